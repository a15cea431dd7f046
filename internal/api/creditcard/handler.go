package creditcard

import (
	"context"
	"net/http"

	"financetracker/internal/api/request"
	"financetracker/internal/api/response"
	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/middleware"
)

const msgNotCardOwner = "Cartão pertence a outro usuário."

// CreditCardService define o contrato que o Handler espera da camada de Serviço.
type CreditCardService interface {
	List(ctx context.Context) ([]domain.CreditCardResponse, error)
	Get(ctx context.Context, id int64) (domain.CreditCardResponse, error)
	Create(ctx context.Context, req domain.CreditCardRequest) (domain.CreditCardResponse, error)
	Update(ctx context.Context, id int64, upd domain.CreditCardUpdate) (domain.CreditCardResponse, error)
	Delete(ctx context.Context, id int64) error
}

// Validator valida os payloads decodificados.
type Validator interface {
	Validate(i interface{}) error
}

// Handler agrupa todos os métodos de Handler de cartões de crédito.
type Handler struct {
	Service   CreditCardService
	Validator Validator
	Logger    logger.Logger

	// EnforceOwnership restringe cada cartão ao dono (ROLE_ADMIN acessa todos).
	EnforceOwnership bool
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc CreditCardService, v Validator, log logger.Logger) *Handler {
	return &Handler{
		Service:   svc,
		Validator: v,
		Logger:    log,
	}
}

// ListCreditCardsHandler lida com a requisição GET /credit-cards.
// @Summary Lista todos os cartões
// @Tags credit-cards
// @Produce json
// @Success 200 {array} domain.CreditCardResponse "Lista de cartões"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /credit-cards [get]
func (h *Handler) ListCreditCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.List(r.Context())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, cards)
}

// GetCreditCardHandler lida com a requisição GET /credit-cards/{id}.
// @Summary Obtém um cartão por ID
// @Tags credit-cards
// @Produce json
// @Param id path int true "ID do cartão"
// @Success 200 {object} domain.CreditCardResponse "Cartão encontrado"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Cartão não encontrado"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /credit-cards/{id} [get]
func (h *Handler) GetCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	card, err := h.Service.Get(r.Context(), id)
	if err == nil {
		err = h.authorize(r, card.UserID)
	}
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, card)
}

// CreateCreditCardHandler lida com a requisição POST /credit-cards.
// @Summary Cadastra um cartão para um usuário existente
// @Tags credit-cards
// @Accept json
// @Produce json
// @Param card body domain.CreditCardRequest true "Dados do cartão"
// @Success 201 {object} domain.CreditCardResponse "Cartão criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /credit-cards [post]
func (h *Handler) CreateCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditCardRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if err := h.authorize(r, *req.UserID); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, created)
}

// UpdateCreditCardHandler lida com a requisição PUT /credit-cards/{id}.
// @Summary Atualiza nome, limite, fechamento e vencimento de um cartão
// @Tags credit-cards
// @Accept json
// @Produce json
// @Param id path int true "ID do cartão"
// @Param card body domain.CreditCardUpdate true "Novos dados"
// @Success 200 {object} domain.CreditCardResponse "Cartão atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Cartão não encontrado"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /credit-cards/{id} [put]
func (h *Handler) UpdateCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var upd domain.CreditCardUpdate
	if err := request.DecodeJSON(w, r, &upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if err := h.Validator.Validate(upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if err := h.authorizeCard(r, id); err != nil {
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

// DeleteCreditCardHandler lida com a requisição DELETE /credit-cards/{id}.
// @Summary Remove um cartão
// @Tags credit-cards
// @Param id path int true "ID do cartão"
// @Success 204 "Cartão removido"
// @Failure 404 {object} domain.ErrorResponse "Cartão não encontrado"
// @Failure 403 {object} domain.ErrorResponse "Acesso negado"
// @Security ApiKeyAuth
// @Router /credit-cards/{id} [delete]
func (h *Handler) DeleteCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if err := h.authorizeCard(r, id); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusNoContent, nil)
}

// authorize falha com Forbidden quando o solicitante não é o dono nem admin.
func (h *Handler) authorize(r *http.Request, ownerID int64) error {
	if !h.EnforceOwnership || middleware.CanAccessOwnedBy(r.Context(), ownerID, domain.RoleAdmin) {
		return nil
	}
	h.Logger.Warn("Acesso a cartão de outro usuário negado.", map[string]interface{}{"owner_id": ownerID, "path": r.URL.Path})
	return apperror.NewForbiddenError(msgNotCardOwner)
}

// authorizeCard carrega o cartão para conferir o dono antes de alterá-lo.
func (h *Handler) authorizeCard(r *http.Request, id int64) error {
	if !h.EnforceOwnership {
		return nil
	}
	card, err := h.Service.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return h.authorize(r, card.UserID)
}
