package router

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "financetracker/docs" // registra a especificação Swagger

	"financetracker/internal/api/auth"
	"financetracker/internal/api/creditcard"
	"financetracker/internal/api/health"
	"financetracker/internal/api/user"
	"financetracker/internal/domain"
	"financetracker/internal/pkg/cache"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/middleware"
)

// RateLimit configura o limitador global. Client nil desativa o limite.
type RateLimit struct {
	Client      cache.Client
	MaxRequests int
	Window      time.Duration
}

// Deps reúne os Handlers já inicializados por injeção de dependências.
// Tokens nil desativa a autenticação: todas as rotas ficam abertas.
type Deps struct {
	Users       *user.Handler
	CreditCards *creditcard.Handler
	Auth        *auth.Handler
	Health      *health.Handler

	Tokens         middleware.TokenValidator
	RateLimit      RateLimit
	AllowedOrigins []string
	Logger         logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Sem autenticação, os wrappers são a identidade.
	authn := identity
	optional := identity
	admin := identity
	self := identity
	if d.Tokens != nil {
		authn = middleware.NewAuthMiddleware(d.Tokens, d.Logger)
		optional = middleware.OptionalAuth(d.Tokens, d.Logger)
		requireAdmin := middleware.RequireRoles(d.Logger, domain.RoleAdmin)
		admin = func(h http.Handler) http.Handler { return authn(requireAdmin(h)) }
		selfOrAdmin := middleware.RequireSelfOrRoles(d.Logger, "id", domain.RoleAdmin)
		self = func(h http.Handler) http.Handler { return authn(selfOrAdmin(h)) }
		d.Users.RestrictRoles = true
		d.CreditCards.EnforceOwnership = true
	}

	// --- 1. Health / infraestrutura ---
	mux.HandleFunc("GET /ping", d.Health.Ping)
	mux.HandleFunc("GET /health", d.Health.Liveness)
	mux.HandleFunc("GET /health/ready", d.Health.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Autenticação ---
	if d.Auth != nil {
		mux.HandleFunc("POST /auth/login", d.Auth.LoginHandler)
	}

	// --- 3. Usuários ---
	mux.Handle("GET /users", admin(http.HandlerFunc(d.Users.ListUsersHandler)))
	mux.Handle("POST /users", optional(http.HandlerFunc(d.Users.CreateUserHandler)))
	mux.Handle("GET /users/{id}", self(http.HandlerFunc(d.Users.GetUserHandler)))
	mux.Handle("PUT /users/{id}", self(http.HandlerFunc(d.Users.UpdateUserHandler)))
	mux.Handle("DELETE /users/{id}", self(http.HandlerFunc(d.Users.DeleteUserHandler)))

	// --- 4. Cartões de crédito ---
	mux.Handle("GET /credit-cards", admin(http.HandlerFunc(d.CreditCards.ListCreditCardsHandler)))
	mux.Handle("POST /credit-cards", authn(http.HandlerFunc(d.CreditCards.CreateCreditCardHandler)))
	mux.Handle("GET /credit-cards/{id}", authn(http.HandlerFunc(d.CreditCards.GetCreditCardHandler)))
	mux.Handle("PUT /credit-cards/{id}", authn(http.HandlerFunc(d.CreditCards.UpdateCreditCardHandler)))
	mux.Handle("DELETE /credit-cards/{id}", authn(http.HandlerFunc(d.CreditCards.DeleteCreditCardHandler)))

	// --- 5. Middlewares globais (o primeiro é o mais externo) ---
	// Metrics envolve o mux para enxergar r.Pattern; o Recoverer fica por dentro
	// para que o 500 de um panic seja contado e apareça no access log.
	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.AccessLog(d.Logger),
		middleware.CORS(d.AllowedOrigins),
	}
	if d.RateLimit.Client != nil {
		mws = append(mws, middleware.RateLimiter(d.RateLimit.Client, d.RateLimit.MaxRequests, d.RateLimit.Window, d.Logger))
	}

	return middleware.Chain(middleware.Metrics(middleware.Recoverer(d.Logger)(mux)), mws...)
}

func identity(h http.Handler) http.Handler { return h }
