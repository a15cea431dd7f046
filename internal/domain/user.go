package domain

import "sort"

// Role é uma permissão nomeada atribuída a um usuário.
type Role string

// Papéis conhecidos pela aplicação.
const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// MsgEmailInUse é a mensagem de conflito para email duplicado.
const MsgEmailInUse = "Email já está em uso"

// DefaultRole é atribuído quando nenhum papel é informado na criação.
const DefaultRole = RoleUser

// User representa a entidade persistida do usuário.
// O hash da senha nunca é exposto: os tipos de resposta não possuem esse campo.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Roles        []Role
}

// HasRole informa se o usuário possui o papel.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRoles remove duplicados e ordena, tratando a lista como um conjunto.
func NormalizeRoles(roles []Role) []Role {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleNames converte os papéis para strings (claims do JWT, arrays do Postgres).
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// RolesFromNames é o inverso de RoleNames.
func RolesFromNames(names []string) []Role {
	roles := make([]Role, len(names))
	for i, n := range names {
		roles[i] = Role(n)
	}
	return roles
}

// UserRequest representa o payload de criação de usuário.
// @Description Payload de criação de usuário.
type UserRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=50" example:"Ana"`
	Email    string `json:"email" validate:"required,notblank,email,max=60" example:"ana@x.com"`
	Password string `json:"password" validate:"required,notblank,min=8,maxbytes=72" example:"longenough"`
	Roles    []Role `json:"roles,omitempty" validate:"omitempty,dive,oneof=ROLE_USER ROLE_ADMIN"`
}

// UserUpdate representa o payload de atualização: apenas nome e email são mutáveis.
// @Description Payload de atualização de usuário.
type UserUpdate struct {
	Name  string `json:"name" validate:"required,notblank,max=50" example:"Ana Maria"`
	Email string `json:"email" validate:"required,notblank,email,max=60" example:"ana.maria@x.com"`
}

// UserResponse é a representação pública do usuário.
// @Description Usuário retornado pela API.
type UserResponse struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"Ana"`
	Email string `json:"email" example:"ana@x.com"`
	Roles []Role `json:"roles"`
}

// LoginRequest é o payload de autenticação.
// @Description Credenciais de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ana@x.com"`
	Password string `json:"password" validate:"required" example:"longenough"`
}

// LoginResponse carrega o token JWT emitido.
// @Description Token de acesso.
type LoginResponse struct {
	Token string `json:"token"`
}
