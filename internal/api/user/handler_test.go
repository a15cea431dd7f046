package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"financetracker/internal/api/user"
	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/middleware"
	"financetracker/internal/pkg/validator"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]domain.UserResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.UserResponse), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (domain.UserResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.UserResponse), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req domain.UserRequest) (domain.UserResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.UserResponse), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, upd domain.UserUpdate) (domain.UserResponse, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(domain.UserResponse), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// serve registra o handler no padrão informado, para que PathValue funcione.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newHandler() (*user.Handler, *MockUserService) {
	svc := new(MockUserService)
	return user.NewHandler(svc, validator.New(), logger.NewNop()), svc
}

var ana = domain.UserResponse{ID: 1, Name: "Ana", Email: "ana@x.com", Roles: []domain.Role{domain.RoleUser}}

func TestCreateUserHandler_Success(t *testing.T) {
	h, svc := newHandler()
	svc.On("Create", mock.Anything, domain.UserRequest{Name: "Ana", Email: "ana@x.com", Password: "longenough"}).Return(ana, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Ana","email":"ana@x.com","password":"longenough"}`))
	rec := serve("POST /users", h.CreateUserHandler, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ana","email":"ana@x.com","roles":["ROLE_USER"]}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCreateUserHandler_ValidationErrors(t *testing.T) {
	h, svc := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"","email":"nope","password":"short"}`))
	rec := serve("POST /users", h.CreateUserHandler, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Category)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserHandler_MalformedJSON(t *testing.T) {
	h, _ := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":`))
	rec := serve("POST /users", h.CreateUserHandler, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserHandler_Conflict(t *testing.T) {
	h, svc := newHandler()
	svc.On("Create", mock.Anything, mock.Anything).Return(domain.UserResponse{}, apperror.NewConflictError(domain.MsgEmailInUse))

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Ana","email":"ana@x.com","password":"longenough"}`))
	rec := serve("POST /users", h.CreateUserHandler, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.MsgEmailInUse, decodeError(t, rec).Message)
}

func TestCreateUserHandler_RestrictRoles(t *testing.T) {
	h, svc := newHandler()
	h.RestrictRoles = true
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r domain.UserRequest) bool { return r.Roles == nil })).Return(ana, nil).Once()
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r domain.UserRequest) bool { return len(r.Roles) == 1 })).Return(ana, nil).Once()

	payload := `{"name":"Ana","email":"ana@x.com","password":"longenough","roles":["ROLE_ADMIN"]}`

	// Anônimo: papéis descartados.
	rec := serve("POST /users", h.CreateUserHandler, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(payload)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Admin: papéis mantidos.
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(payload))
	req = req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: 9, Roles: []domain.Role{domain.RoleAdmin}}))
	rec = serve("POST /users", h.CreateUserHandler, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	svc.AssertExpectations(t)
}

func TestGetUserHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("Get", mock.Anything, int64(1)).Return(ana, nil)
	svc.On("Get", mock.Anything, int64(99)).Return(domain.UserResponse{}, apperror.NewEntityNotFoundError("Usuário", 99))

	rec := serve("GET /users/{id}", h.GetUserHandler, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve("GET /users/{id}", h.GetUserHandler, httptest.NewRequest(http.MethodGet, "/users/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Usuário não encontrado. ID = 99", decodeError(t, rec).Message)

	rec = serve("GET /users/{id}", h.GetUserHandler, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUsersHandler_Empty(t *testing.T) {
	h, svc := newHandler()
	svc.On("List", mock.Anything).Return([]domain.UserResponse{}, nil)

	rec := serve("GET /users", h.ListUsersHandler, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateUserHandler(t *testing.T) {
	h, svc := newHandler()
	upd := domain.UserUpdate{Name: "Ana Maria", Email: "ana.maria@x.com"}
	svc.On("Update", mock.Anything, int64(1), upd).Return(domain.UserResponse{ID: 1, Name: "Ana Maria", Email: "ana.maria@x.com"}, nil)

	req := httptest.NewRequest(http.MethodPut, "/users/1", strings.NewReader(`{"name":"Ana Maria","email":"ana.maria@x.com"}`))
	rec := serve("PUT /users/{id}", h.UpdateUserHandler, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana.maria@x.com")
}

func TestDeleteUserHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("Delete", mock.Anything, int64(1)).Return(nil)
	svc.On("Delete", mock.Anything, int64(2)).Return(apperror.NewConflictError("Usuário possui cartões de crédito cadastrados."))

	rec := serve("DELETE /users/{id}", h.DeleteUserHandler, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve("DELETE /users/{id}", h.DeleteUserHandler, httptest.NewRequest(http.MethodDelete, "/users/2", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
