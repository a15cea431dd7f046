package authservice

import (
	"context"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
)

const msgInvalidCredentials = "Credenciais inválidas."

// UserFinder busca o usuário (com papéis) pelo email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordVerifier compara a senha em texto puro com o hash armazenado.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// TokenIssuer emite o JWT do usuário autenticado.
type TokenIssuer interface {
	GenerateToken(userID int64, roles []string) (string, error)
}

// Service autentica usuários.
type Service struct {
	users    UserFinder
	verifier PasswordVerifier
	tokens   TokenIssuer
	logger   logger.Logger
}

// NewService cria o serviço de autenticação.
func NewService(users UserFinder, verifier PasswordVerifier, tokens TokenIssuer, logger logger.Logger) *Service {
	return &Service{users: users, verifier: verifier, tokens: tokens, logger: logger}
}

// Login verifica as credenciais e devolve um token. Email inexistente e senha
// errada produzem o mesmo erro.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	s.logger.Debug("Iniciando login no serviço.", map[string]interface{}{"email": email})

	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", apperror.Propagate("Falha interna ao buscar usuário.", err)
	}
	if user == nil || !s.verifier.Verify(password, user.PasswordHash) {
		s.logger.Warn("Tentativa de login inválida.", map[string]interface{}{"email": email})
		return "", apperror.NewUnauthorizedError(msgInvalidCredentials)
	}

	tokenString, err := s.tokens.GenerateToken(user.ID, domain.RoleNames(user.Roles))
	if err != nil {
		s.logger.Error("Falha ao gerar token.", err)
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado com sucesso.", map[string]interface{}{"user_id": user.ID})
	return tokenString, nil
}
