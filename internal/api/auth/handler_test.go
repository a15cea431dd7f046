package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"financetracker/internal/api/auth"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/validator"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	svc := new(MockAuthService)
	h := auth.NewHandler(svc, validator.New(), logger.NewNop())
	svc.On("Login", mock.Anything, "ana@x.com", "longenough").Return("jwt-token", nil)
	svc.On("Login", mock.Anything, "ana@x.com", "errada").Return("", apperror.NewUnauthorizedError("Credenciais inválidas."))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"sucesso", `{"email":"ana@x.com","password":"longenough"}`, http.StatusOK},
		{"senha errada", `{"email":"ana@x.com","password":"errada"}`, http.StatusUnauthorized},
		{"email inválido", `{"email":"ana","password":"x"}`, http.StatusBadRequest},
		{"corpo vazio", ``, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"token":"jwt-token"}`, rec.Body.String())
			}
		})
	}
}
