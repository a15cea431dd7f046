package errors_test

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	apperror "financetracker/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validação", apperror.NewValidationError("nome vazio"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"não encontrado", apperror.NewEntityNotFoundError("Usuário", 7), http.StatusNotFound, "NOT_FOUND"},
		{"conflito", apperror.NewConflictError("Email já está em uso"), http.StatusConflict, "CONFLICT"},
		{"não autorizado", apperror.NewUnauthorizedError("token ausente"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"proibido", apperror.NewForbiddenError("sem permissão"), http.StatusForbidden, "FORBIDDEN"},
		{"interno", apperror.NewDBError("falha", sql.ErrConnDone), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"não tipado", fmt.Errorf("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
		{"encapsulado", fmt.Errorf("camada: %w", apperror.NewNotFoundError("x")), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, category, _ := apperror.MapToHTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.category, category)
		})
	}
}

func TestMapToHTTPStatus_InternalMessageIsGeneric(t *testing.T) {
	err := apperror.NewDBError("falha ao buscar usuário", fmt.Errorf("pq: senha incorreta para role postgres"))

	_, _, msg := apperror.MapToHTTPStatus(err)

	assert.NotContains(t, msg, "postgres")
	assert.Equal(t, "Ocorreu um erro inesperado.", msg)
}

func TestNewEntityNotFoundError_Message(t *testing.T) {
	err := apperror.NewEntityNotFoundError("Cartão de crédito", 42)
	assert.Equal(t, "Recurso não encontrado: Cartão de crédito não encontrado. ID = 42", err.Error())
}

func TestNewFieldValidationError(t *testing.T) {
	fields := map[string][]string{
		"name":  {"é obrigatório"},
		"email": {"deve ser um email válido"},
	}

	err := apperror.NewFieldValidationError(fields)

	assert.Equal(t, "Erro de Validação: email deve ser um email válido; name é obrigatório", err.Error())
	assert.Equal(t, fields, apperror.FieldErrors(err))
	assert.Nil(t, apperror.FieldErrors(apperror.NewNotFoundError("x")))
}

func TestPropagate(t *testing.T) {
	notFound := apperror.NewNotFoundError("x")
	assert.Same(t, notFound, apperror.Propagate("ignorada", notFound))
	assert.Nil(t, apperror.Propagate("ignorada", nil))

	raw := fmt.Errorf("driver")
	wrapped := apperror.Propagate("falha ao salvar", raw)
	assert.IsType(t, &apperror.InternalError{}, wrapped)
	assert.ErrorIs(t, wrapped, raw)
}
