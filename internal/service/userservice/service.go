package userservice

import (
	"context"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/mapper"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/metrics"
)

const entityName = "Usuário"

// UserRepository define o contrato que o Serviço de Usuários espera da camada de Persistência.
// As buscas devolvem nil, nil quando o registro não existe.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// CreditCardCounter informa quantos cartões um usuário possui (política de remoção).
type CreditCardCounter interface {
	CountByUserID(ctx context.Context, userID int64) (int, error)
}

// PasswordHasher gera o hash das senhas.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service implementa as regras de negócio de usuários.
type Service struct {
	repo   UserRepository
	cards  CreditCardCounter
	tx     database.Transactor
	hasher PasswordHasher
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Usuários.
func NewService(repo UserRepository, cards CreditCardCounter, tx database.Transactor, hasher PasswordHasher, logger logger.Logger) *Service {
	return &Service{repo: repo, cards: cards, tx: tx, hasher: hasher, logger: logger}
}

// List devolve todos os usuários.
func (s *Service) List(ctx context.Context) ([]domain.UserResponse, error) {
	s.logger.Debug("Iniciando listagem de usuários no serviço.", nil)

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar usuários no repositório.", err)
		return nil, apperror.Propagate("Falha interna ao listar usuários.", err)
	}

	return mapper.ToUserResponses(users), nil
}

// Get busca um usuário pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.UserResponse, error) {
	s.logger.Debug("Iniciando busca de usuário por ID no serviço.", map[string]interface{}{"id": id})

	user, err := s.findExisting(ctx, id)
	if err != nil {
		return domain.UserResponse{}, err
	}

	return mapper.ToUserResponse(*user), nil
}

// Create cadastra um usuário: email único, senha com hash e papel padrão quando nenhum é informado.
func (s *Service) Create(ctx context.Context, req domain.UserRequest) (domain.UserResponse, error) {
	s.logger.Debug("Iniciando criação de usuário no serviço.", map[string]interface{}{"email": req.Email})

	var created domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailAvailable(ctx, req.Email, 0); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return apperror.Propagate("Falha ao gerar hash da senha.", err)
		}

		user := mapper.ToUserEntity(req, hash)
		if len(user.Roles) == 0 {
			user.Roles = []domain.Role{domain.DefaultRole}
		}

		if err := s.repo.Save(ctx, &user); err != nil {
			return apperror.Propagate("Falha interna ao salvar usuário.", err)
		}
		created = user
		return nil
	})
	if err != nil {
		s.logger.Warn("Criação de usuário rejeitada.", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return domain.UserResponse{}, err
	}

	metrics.UsersCreatedTotal.Inc()
	s.logger.Info("Usuário criado com sucesso.", map[string]interface{}{"id": created.ID})
	return mapper.ToUserResponse(created), nil
}

// Update altera nome e email. O conflito de email é verificado antes da existência do ID.
func (s *Service) Update(ctx context.Context, id int64, upd domain.UserUpdate) (domain.UserResponse, error) {
	s.logger.Debug("Iniciando atualização de usuário no serviço.", map[string]interface{}{"id": id})

	var updated domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailAvailable(ctx, upd.Email, id); err != nil {
			return err
		}

		user, err := s.findExisting(ctx, id)
		if err != nil {
			return err
		}

		mapper.ApplyUserUpdate(user, upd)
		if err := s.repo.Save(ctx, user); err != nil {
			return apperror.Propagate("Falha interna ao atualizar usuário.", err)
		}
		updated = *user
		return nil
	})
	if err != nil {
		s.logger.Warn("Atualização de usuário rejeitada.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.UserResponse{}, err
	}

	s.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"id": id})
	return mapper.ToUserResponse(updated), nil
}

// Delete remove o usuário. Usuários com cartões não podem ser removidos.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Debug("Iniciando remoção de usuário no serviço.", map[string]interface{}{"id": id})

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.findExisting(ctx, id); err != nil {
			return err
		}

		count, err := s.cards.CountByUserID(ctx, id)
		if err != nil {
			return apperror.Propagate("Falha interna ao verificar cartões do usuário.", err)
		}
		if count > 0 {
			return apperror.NewConflictError("Usuário possui cartões de crédito vinculados")
		}

		return apperror.Propagate("Falha interna ao remover usuário.", s.repo.Delete(ctx, id))
	})
	if err != nil {
		s.logger.Warn("Remoção de usuário rejeitada.", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}

	s.logger.Info("Usuário removido com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// ensureEmailAvailable falha com Conflict se o email pertence a outro usuário.
// selfID == 0 indica criação.
func (s *Service) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return apperror.Propagate("Falha interna ao verificar email.", err)
	}
	if existing != nil && (selfID == 0 || existing.ID != selfID) {
		return apperror.NewConflictError(domain.MsgEmailInUse)
	}
	return nil
}

func (s *Service) findExisting(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Propagate("Falha interna ao buscar usuário.", err)
	}
	if user == nil {
		return nil, apperror.NewEntityNotFoundError(entityName, id)
	}
	return user, nil
}
