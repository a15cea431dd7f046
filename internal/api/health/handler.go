package health

import (
	"context"
	"net/http"
	"time"

	"financetracker/internal/api/response"
	"financetracker/internal/pkg/logger"
)

// Pinger é satisfeito por *sql.DB (PingContext) através de PingFunc, e pelo cache.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta uma função a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler expõe as sondas de liveness e readiness.
type Handler struct {
	checks  map[string]Pinger
	timeout time.Duration
	logger  logger.Logger
}

// NewHandler recebe as dependências verificadas na readiness, por nome.
func NewHandler(checks map[string]Pinger, log logger.Logger) *Handler {
	return &Handler{checks: checks, timeout: 2 * time.Second, logger: log}
}

// Status é o corpo das respostas de saúde.
type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Ping responde "pong" em texto puro.
// @Summary Verifica se a API está no ar
// @Tags health
// @Produce plain
// @Success 200 {string} string "pong"
// @Router /ping [get]
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// Liveness lida com GET /health.
// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} Status
// @Router /health [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.logger, http.StatusOK, Status{Status: "ok"})
}

// Readiness lida com GET /health/ready: 503 quando alguma dependência falha.
// @Summary Readiness (Postgres e Redis)
// @Tags health
// @Produce json
// @Success 200 {object} Status
// @Failure 503 {object} Status
// @Router /health/ready [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := Status{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Dependência indisponível.", map[string]interface{}{"check": name, "error": err.Error()})
			status.Checks[name] = "down"
			status.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "up"
	}

	response.JSON(w, h.logger, code, status)
}
