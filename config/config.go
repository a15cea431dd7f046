package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config armazena todas as configurações da API.
// Os valores vêm das variáveis de ambiente (o .env é carregado antes, no main).
type Config struct {
	// Geral
	Port        string `env:"PORT, default=8080"`
	Environment string `env:"ENV, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	LogPretty   bool   `env:"LOG_PRETTY, default=false"`

	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig

	// CORSAllowedOrigins aceita uma lista separada por vírgulas.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
}

// DatabaseConfig agrupa a conexão e o pool do PostgreSQL.
type DatabaseConfig struct {
	URL            string `env:"DATABASE_URL, required"`
	TimeoutSec     int    `env:"DB_TIMEOUT_SEC, default=5"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS, default=25"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS, default=10"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START, default=false"`
}

// RedisConfig aponta para o Redis usado pelo rate limiter.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
}

// RateLimitConfig define a janela fixa por IP.
type RateLimitConfig struct {
	Enabled     bool `env:"RATE_LIMIT_ENABLED, default=false"`
	MaxRequests int  `env:"RATE_LIMIT_MAX_REQUESTS, default=100"`
	PeriodSec   int  `env:"RATE_LIMIT_PERIOD_SEC, default=60"`
}

// AuthConfig controla a proteção das rotas com JWT.
type AuthConfig struct {
	Enabled   bool   `env:"AUTH_ENABLED, default=false"`
	SecretKey string `env:"JWT_SECRET_KEY"`
	ExpiryMin int    `env:"JWT_EXPIRY_MIN, default=60"`
}

// DBTimeout é o limite aplicado a cada chamada de repositório.
func (c DatabaseConfig) DBTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Period é a duração da janela do rate limiter.
func (c RateLimitConfig) Period() time.Duration {
	return time.Duration(c.PeriodSec) * time.Second
}

// TokenExpiry é a validade dos tokens emitidos.
func (c AuthConfig) TokenExpiry() time.Duration {
	return time.Duration(c.ExpiryMin) * time.Minute
}

// Load carrega as configurações a partir das variáveis de ambiente do processo.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Database.TimeoutSec <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser maior que zero"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.PeriodSec <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD_SEC devem ser maiores que zero"))
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.SecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY é obrigatória quando AUTH_ENABLED=true"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuração inválida: %w", errors.Join(errs...))
	}
	return nil
}
