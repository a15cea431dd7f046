// Package metrics define e registra as métricas Prometheus da API.
// As variáveis são registradas no registry padrão via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal conta requisições por método, rota (padrão do mux) e status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total de requisições HTTP atendidas.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration mede a latência por método e rota.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duração das requisições HTTP.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// UsersCreatedTotal conta usuários criados com sucesso.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "users_created_total",
		Help: "Total de usuários criados.",
	},
)

// CreditCardsCreatedTotal conta cartões criados com sucesso.
var CreditCardsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "credit_cards_created_total",
		Help: "Total de cartões de crédito criados.",
	},
)
