package creditcardservice

import (
	"context"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/mapper"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/metrics"
)

const (
	entityName     = "Cartão de crédito"
	userEntityName = "Usuário"
)

// CreditCardRepository define o contrato de persistência de cartões.
// FindByID devolve nil, nil quando o cartão não existe.
type CreditCardRepository interface {
	FindAll(ctx context.Context) ([]domain.CreditCard, error)
	FindByID(ctx context.Context, id int64) (*domain.CreditCard, error)
	Save(ctx context.Context, card *domain.CreditCard) error
	Delete(ctx context.Context, id int64) error
}

// UserFinder resolve o dono do cartão.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service implementa as regras de negócio de cartões de crédito.
type Service struct {
	repo   CreditCardRepository
	users  UserFinder
	tx     database.Transactor
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Cartões.
func NewService(repo CreditCardRepository, users UserFinder, tx database.Transactor, logger logger.Logger) *Service {
	return &Service{repo: repo, users: users, tx: tx, logger: logger}
}

// List devolve todos os cartões.
func (s *Service) List(ctx context.Context) ([]domain.CreditCardResponse, error) {
	s.logger.Debug("Iniciando listagem de cartões no serviço.", nil)

	cards, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar cartões no repositório.", err)
		return nil, apperror.Propagate("Falha interna ao listar cartões.", err)
	}

	return mapper.ToCreditCardResponses(cards), nil
}

// Get busca um cartão pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.CreditCardResponse, error) {
	s.logger.Debug("Iniciando busca de cartão por ID no serviço.", map[string]interface{}{"id": id})

	card, err := s.findExisting(ctx, id)
	if err != nil {
		return domain.CreditCardResponse{}, err
	}

	return mapper.ToCreditCardResponse(*card), nil
}

// Create cadastra um cartão para um usuário existente.
func (s *Service) Create(ctx context.Context, req domain.CreditCardRequest) (domain.CreditCardResponse, error) {
	if req.UserID == nil {
		return domain.CreditCardResponse{}, apperror.NewFieldValidationError(map[string][]string{"userId": {"é obrigatório"}})
	}
	userID := *req.UserID
	s.logger.Debug("Iniciando criação de cartão no serviço.", map[string]interface{}{"user_id": userID})

	var created domain.CreditCard
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return apperror.Propagate("Falha interna ao buscar usuário.", err)
		}
		if owner == nil {
			return apperror.NewEntityNotFoundError(userEntityName, userID)
		}

		card := mapper.ToCreditCardEntity(req, *owner)
		if err := s.repo.Save(ctx, &card); err != nil {
			return apperror.Propagate("Falha interna ao salvar cartão.", err)
		}
		created = card
		return nil
	})
	if err != nil {
		s.logger.Warn("Criação de cartão rejeitada.", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return domain.CreditCardResponse{}, err
	}

	metrics.CreditCardsCreatedTotal.Inc()
	s.logger.Info("Cartão criado com sucesso.", map[string]interface{}{"id": created.ID, "user_id": created.UserID})
	return mapper.ToCreditCardResponse(created), nil
}

// Update altera nome, limite, fechamento e vencimento do cartão.
func (s *Service) Update(ctx context.Context, id int64, upd domain.CreditCardUpdate) (domain.CreditCardResponse, error) {
	s.logger.Debug("Iniciando atualização de cartão no serviço.", map[string]interface{}{"id": id})

	var updated domain.CreditCard
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		card, err := s.findExisting(ctx, id)
		if err != nil {
			return err
		}

		mapper.ApplyCreditCardUpdate(card, upd)
		if err := s.repo.Save(ctx, card); err != nil {
			return apperror.Propagate("Falha interna ao atualizar cartão.", err)
		}
		updated = *card
		return nil
	})
	if err != nil {
		s.logger.Warn("Atualização de cartão rejeitada.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.CreditCardResponse{}, err
	}

	s.logger.Info("Cartão atualizado com sucesso.", map[string]interface{}{"id": id})
	return mapper.ToCreditCardResponse(updated), nil
}

// Delete remove o cartão.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Debug("Iniciando remoção de cartão no serviço.", map[string]interface{}{"id": id})

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.findExisting(ctx, id); err != nil {
			return err
		}
		return apperror.Propagate("Falha interna ao remover cartão.", s.repo.Delete(ctx, id))
	})
	if err != nil {
		s.logger.Warn("Remoção de cartão rejeitada.", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}

	s.logger.Info("Cartão removido com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) findExisting(ctx context.Context, id int64) (*domain.CreditCard, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Propagate("Falha interna ao buscar cartão.", err)
	}
	if card == nil {
		return nil, apperror.NewEntityNotFoundError(entityName, id)
	}
	return card, nil
}
