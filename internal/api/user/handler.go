package user

import (
	"context"
	"net/http"

	"financetracker/internal/api/request"
	"financetracker/internal/api/response"
	"financetracker/internal/domain"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/middleware"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	List(ctx context.Context) ([]domain.UserResponse, error)
	Get(ctx context.Context, id int64) (domain.UserResponse, error)
	Create(ctx context.Context, req domain.UserRequest) (domain.UserResponse, error)
	Update(ctx context.Context, id int64, upd domain.UserUpdate) (domain.UserResponse, error)
	Delete(ctx context.Context, id int64) error
}

// Validator valida os payloads decodificados.
type Validator interface {
	Validate(i interface{}) error
}

// Handler agrupa todos os métodos de Handler de usuários.
type Handler struct {
	Service   UserService
	Validator Validator
	Logger    logger.Logger

	// RestrictRoles faz o cadastro ignorar papéis pedidos por quem não é ROLE_ADMIN.
	RestrictRoles bool
}

// NewHandler cria uma nova instância do Handler, injetando o Service, o Validator e o Logger.
func NewHandler(svc UserService, v Validator, log logger.Logger) *Handler {
	return &Handler{
		Service:   svc,
		Validator: v,
		Logger:    log,
	}
}

// ListUsersHandler lida com a requisição GET /users.
// @Summary Lista todos os usuários
// @Tags users
// @Produce json
// @Success 200 {array} domain.UserResponse "Lista de usuários"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, users)
}

// GetUserHandler lida com a requisição GET /users/{id}.
// @Summary Obtém um usuário por ID
// @Tags users
// @Produce json
// @Param id path int true "ID do usuário"
// @Success 200 {object} domain.UserResponse "Usuário encontrado"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, user)
}

// CreateUserHandler lida com a requisição POST /users.
// @Summary Cadastra um usuário
// @Description Valida o payload, garante email único, gera o hash da senha e atribui ROLE_USER quando nenhum papel é informado.
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserRequest true "Dados do usuário"
// @Success 201 {object} domain.UserResponse "Usuário criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já está em uso"
// @Router /users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.UserRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if h.RestrictRoles && len(req.Roles) > 0 {
		claims, ok := middleware.GetUserClaimsFromContext(r.Context())
		if !ok || !claims.HasAnyRole(domain.RoleAdmin) {
			h.Logger.Warn("Papéis solicitados ignorados: solicitante não é admin.", map[string]interface{}{"email": req.Email})
			req.Roles = nil
		}
	}

	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, created)
}

// UpdateUserHandler lida com a requisição PUT /users/{id}.
// @Summary Atualiza nome e email de um usuário
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "ID do usuário"
// @Param user body domain.UserUpdate true "Novos dados"
// @Success 200 {object} domain.UserResponse "Usuário atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Email já está em uso"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var upd domain.UserUpdate
	if err := request.DecodeJSON(w, r, &upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if err := h.Validator.Validate(upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, upd)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, updated)
}

// DeleteUserHandler lida com a requisição DELETE /users/{id}.
// @Summary Remove um usuário
// @Tags users
// @Param id path int true "ID do usuário"
// @Success 204 "Usuário removido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Usuário possui cartões"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /users/{id} [delete]
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusNoContent, nil)
}
