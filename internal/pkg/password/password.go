package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperror "financetracker/internal/errors"
)

// Hasher encapsula o bcrypt com um custo configurável.
type Hasher struct {
	cost int
}

// NewHasher cria um Hasher. Custos fora do intervalo do bcrypt usam bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash gera o hash da senha.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.NewValidationError("password deve ter no máximo 72 bytes")
	}
	if err != nil {
		return "", apperror.NewInternalError("falha ao gerar hash da senha", err)
	}
	return string(hash), nil
}

// Verify compara a senha com o hash armazenado.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
