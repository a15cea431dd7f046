package auth

import (
	"context"
	"net/http"

	"financetracker/internal/api/request"
	"financetracker/internal/api/response"
	"financetracker/internal/domain"
	"financetracker/internal/pkg/logger"
)

// AuthService define o contrato de login.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Validator valida os payloads decodificados.
type Validator interface {
	Validate(i interface{}) error
}

// Handler expõe a autenticação.
type Handler struct {
	Service   AuthService
	Validator Validator
	Logger    logger.Logger
}

// NewHandler cria o Handler de autenticação.
func NewHandler(svc AuthService, v Validator, log logger.Logger) *Handler {
	return &Handler{Service: svc, Validator: v, Logger: log}
}

// LoginHandler lida com a requisição POST /auth/login.
// @Summary Autentica um usuário e retorna um JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais"
// @Success 200 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	tok, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, domain.LoginResponse{Token: tok})
}
