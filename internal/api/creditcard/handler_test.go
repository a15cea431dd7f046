package creditcard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"financetracker/internal/api/creditcard"
	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/middleware"
	"financetracker/internal/pkg/validator"
)

type MockCreditCardService struct {
	mock.Mock
}

func (m *MockCreditCardService) List(ctx context.Context) ([]domain.CreditCardResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CreditCardResponse), args.Error(1)
}

func (m *MockCreditCardService) Get(ctx context.Context, id int64) (domain.CreditCardResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CreditCardResponse), args.Error(1)
}

func (m *MockCreditCardService) Create(ctx context.Context, req domain.CreditCardRequest) (domain.CreditCardResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.CreditCardResponse), args.Error(1)
}

func (m *MockCreditCardService) Update(ctx context.Context, id int64, upd domain.CreditCardUpdate) (domain.CreditCardResponse, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(domain.CreditCardResponse), args.Error(1)
}

func (m *MockCreditCardService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func newHandler() (*creditcard.Handler, *MockCreditCardService) {
	svc := new(MockCreditCardService)
	return creditcard.NewHandler(svc, validator.New(), logger.NewNop()), svc
}

var visa = domain.CreditCardResponse{
	ID: 10, Name: "Visa", CreditLimit: decimal.NewFromInt(1000), ClosingDay: 5, DueDay: 15,
	CurrentBalance: decimal.Zero, UserID: 1,
}

func TestCreateCreditCardHandler_Success(t *testing.T) {
	h, svc := newHandler()
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r domain.CreditCardRequest) bool {
		return r.Name == "Visa" && r.CreditLimit.Equal(decimal.NewFromInt(1000)) && *r.ClosingDay == 5 && *r.DueDay == 15 && *r.UserID == 1
	})).Return(visa, nil)

	body := `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":1}`
	rec := serve("POST /credit-cards", h.CreateCreditCardHandler, httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":10,"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":1}`, rec.Body.String())
}

func TestCreateCreditCardHandler_Validation(t *testing.T) {
	h, svc := newHandler()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"dia de fechamento fora do intervalo", `{"name":"Visa","creditLimit":1000,"closingDay":0,"dueDay":15,"currentBalance":0,"userId":1}`, "closingDay"},
		{"vencimento acima de 31", `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":32,"currentBalance":0,"userId":1}`, "dueDay"},
		{"limite negativo", `{"name":"Visa","creditLimit":-1,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":1}`, "creditLimit"},
		{"sem dono", `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0}`, "userId"},
		{"nome em branco", `{"name":"   ","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":1}`, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve("POST /credit-cards", h.CreateCreditCardHandler, httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp domain.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Fields, tt.field)
		})
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCreditCardHandler_UnknownOwner(t *testing.T) {
	h, svc := newHandler()
	svc.On("Create", mock.Anything, mock.Anything).Return(domain.CreditCardResponse{}, apperror.NewEntityNotFoundError("Usuário", 77))

	body := `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":77}`
	rec := serve("POST /credit-cards", h.CreateCreditCardHandler, httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCreditCardHandler(t *testing.T) {
	h, svc := newHandler()
	updated := visa
	updated.Name = "Visa Platinum"
	updated.CreditLimit = decimal.RequireFromString("2500.50")
	svc.On("Update", mock.Anything, int64(10), mock.MatchedBy(func(u domain.CreditCardUpdate) bool {
		return u.Name == "Visa Platinum" && u.CreditLimit.Equal(decimal.RequireFromString("2500.50"))
	})).Return(updated, nil)

	body := `{"name":"Visa Platinum","creditLimit":2500.50,"closingDay":10,"dueDay":20}`
	rec := serve("PUT /credit-cards/{id}", h.UpdateCreditCardHandler, httptest.NewRequest(http.MethodPut, "/credit-cards/10", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"creditLimit":2500.5`)
}

func TestGetAndDeleteCreditCardHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("Get", mock.Anything, int64(10)).Return(visa, nil)
	svc.On("Delete", mock.Anything, int64(10)).Return(nil).Once()
	svc.On("Delete", mock.Anything, int64(10)).Return(apperror.NewEntityNotFoundError("Cartão de crédito", 10)).Once()

	rec := serve("GET /credit-cards/{id}", h.GetCreditCardHandler, httptest.NewRequest(http.MethodGet, "/credit-cards/10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve("DELETE /credit-cards/{id}", h.DeleteCreditCardHandler, httptest.NewRequest(http.MethodDelete, "/credit-cards/10", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve("DELETE /credit-cards/{id}", h.DeleteCreditCardHandler, httptest.NewRequest(http.MethodDelete, "/credit-cards/10", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCreditCardsHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("List", mock.Anything).Return([]domain.CreditCardResponse{visa}, nil)

	rec := serve("GET /credit-cards", h.ListCreditCardsHandler, httptest.NewRequest(http.MethodGet, "/credit-cards", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []domain.CreditCardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Visa", list[0].Name)
}

func TestCreateCreditCardHandler_FractionalMoney(t *testing.T) {
	h, svc := newHandler()
	created := visa
	created.CreditLimit = decimal.RequireFromString("2500.50")
	created.CurrentBalance = decimal.RequireFromString("123.45")
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r domain.CreditCardRequest) bool {
		return r.CurrentBalance.Equal(decimal.RequireFromString("123.45"))
	})).Return(created, nil)

	body := `{"name":"Visa","creditLimit":2500.50,"closingDay":5,"dueDay":15,"currentBalance":123.45,"userId":1}`
	rec := serve("POST /credit-cards", h.CreateCreditCardHandler, httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentBalance":123.45`)

	rec = serve("POST /credit-cards", h.CreateCreditCardHandler, httptest.NewRequest(http.MethodPost, "/credit-cards",
		strings.NewReader(`{"name":"Visa","creditLimit":10.555,"closingDay":5,"dueDay":15,"currentBalance":0.005,"userId":1}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "creditLimit")
	assert.Contains(t, resp.Fields, "currentBalance")
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func newOwnedHandler() (*creditcard.Handler, *MockCreditCardService) {
	h, svc := newHandler()
	h.EnforceOwnership = true
	return h, svc
}

func as(req *http.Request, userID int64, roles ...domain.Role) *http.Request {
	return req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: userID, Roles: roles}))
}

func TestCreditCardHandler_Ownership(t *testing.T) {
	h, svc := newOwnedHandler()
	svc.On("Get", mock.Anything, int64(10)).Return(visa, nil)
	svc.On("Update", mock.Anything, int64(10), mock.Anything).Return(visa, nil)
	svc.On("Delete", mock.Anything, int64(10)).Return(nil)

	update := `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15}`

	t.Run("outro usuário recebe 403", func(t *testing.T) {
		rec := serve("GET /credit-cards/{id}", h.GetCreditCardHandler, as(httptest.NewRequest(http.MethodGet, "/credit-cards/10", nil), 2, domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = serve("PUT /credit-cards/{id}", h.UpdateCreditCardHandler, as(httptest.NewRequest(http.MethodPut, "/credit-cards/10", strings.NewReader(update)), 2, domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = serve("DELETE /credit-cards/{id}", h.DeleteCreditCardHandler, as(httptest.NewRequest(http.MethodDelete, "/credit-cards/10", nil), 2, domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("dono acessa o próprio cartão", func(t *testing.T) {
		rec := serve("GET /credit-cards/{id}", h.GetCreditCardHandler, as(httptest.NewRequest(http.MethodGet, "/credit-cards/10", nil), 1, domain.RoleUser))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve("PUT /credit-cards/{id}", h.UpdateCreditCardHandler, as(httptest.NewRequest(http.MethodPut, "/credit-cards/10", strings.NewReader(update)), 1, domain.RoleUser))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin acessa qualquer cartão", func(t *testing.T) {
		rec := serve("DELETE /credit-cards/{id}", h.DeleteCreditCardHandler, as(httptest.NewRequest(http.MethodDelete, "/credit-cards/10", nil), 99, domain.RoleAdmin))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCreateCreditCardHandler_OwnershipOfTargetUser(t *testing.T) {
	h, svc := newOwnedHandler()
	svc.On("Create", mock.Anything, mock.Anything).Return(visa, nil)

	body := `{"name":"Visa","creditLimit":1000,"closingDay":5,"dueDay":15,"currentBalance":0,"userId":1}`

	rec := serve("POST /credit-cards", h.CreateCreditCardHandler, as(httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(body)), 2, domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	rec = serve("POST /credit-cards", h.CreateCreditCardHandler, as(httptest.NewRequest(http.MethodPost, "/credit-cards", strings.NewReader(body)), 1, domain.RoleUser))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
