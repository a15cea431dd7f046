package mapper

import "financetracker/internal/domain"

// ToUserEntity cria a entidade a partir do payload e do hash já calculado.
// Os papéis são normalizados; a atribuição do papel padrão fica no serviço.
func ToUserEntity(req domain.UserRequest, passwordHash string) domain.User {
	return domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Roles:        domain.NormalizeRoles(req.Roles),
	}
}

// ToUserResponse remove o hash da senha e expõe os papéis.
func ToUserResponse(u domain.User) domain.UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []domain.Role{}
	}
	return domain.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Roles: roles,
	}
}

// ToUserResponses converte uma lista, devolvendo slice vazio (nunca nil).
func ToUserResponses(users []domain.User) []domain.UserResponse {
	out := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

// ApplyUserUpdate altera apenas nome e email.
func ApplyUserUpdate(u *domain.User, upd domain.UserUpdate) {
	u.Name = upd.Name
	u.Email = upd.Email
}
