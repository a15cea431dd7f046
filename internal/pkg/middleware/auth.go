package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"financetracker/internal/api/response"
	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/token"
)

const msgNotOwner = "Acesso permitido apenas ao próprio usuário."

// ContextKey garante chaves de contexto únicas para este pacote.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
	RequestIDKey
)

// UserClaims representa os dados do usuário extraídos do token JWT.
type UserClaims struct {
	UserID int64
	Roles  []domain.Role
}

// HasAnyRole informa se as claims possuem algum dos papéis.
func (c UserClaims) HasAnyRole(roles ...domain.Role) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// TokenValidator define o contrato de validação necessário para o middleware.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware exige um Bearer token válido e anexa as claims ao contexto.
func NewAuthMiddleware(tokens TokenValidator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				log.Debug("Token rejeitado.", map[string]interface{}{"error": err.Error()})
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), toUserClaims(claims))))
		})
	}
}

// OptionalAuth anexa as claims quando há um token, sem exigir autenticação.
// Um token presente porém inválido ainda resulta em 401.
func OptionalAuth(tokens TokenValidator, log logger.Logger) func(http.Handler) http.Handler {
	required := NewAuthMiddleware(tokens, log)
	return func(next http.Handler) http.Handler {
		withAuth := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

// RequireRoles libera o acesso apenas para quem possui algum dos papéis.
// Deve rodar depois de NewAuthMiddleware.
func RequireRoles(log logger.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}
			if !claims.HasAnyRole(roles...) {
				response.Error(w, r, log, apperror.NewForbiddenError("Você não tem a permissão necessária."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrRoles libera o acesso quando o parâmetro de rota param é o próprio
// usuário autenticado, ou quando ele possui algum dos papéis. IDs malformados seguem
// para o handler, que responde 400.
func RequireSelfOrRoles(log logger.Logger, param string, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}
			id, err := strconv.ParseInt(r.PathValue(param), 10, 64)
			if err != nil || claims.HasAnyRole(roles...) || id == claims.UserID {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, r, log, apperror.NewForbiddenError(msgNotOwner))
		})
	}
}

// CanAccessOwnedBy informa se as claims do contexto podem operar um recurso do usuário ownerID.
func CanAccessOwnedBy(ctx context.Context, ownerID int64, roles ...domain.Role) bool {
	claims, ok := GetUserClaimsFromContext(ctx)
	return ok && (claims.UserID == ownerID || claims.HasAnyRole(roles...))
}

// WithUserClaims anexa as claims ao contexto.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func toUserClaims(c *token.CustomClaims) UserClaims {
	return UserClaims{UserID: c.UserID, Roles: domain.RolesFromNames(c.Roles)}
}
