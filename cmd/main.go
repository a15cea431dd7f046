package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"financetracker/config"
	"financetracker/internal/pkg/cache"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/pkg/password"
	"financetracker/internal/pkg/token"
	"financetracker/internal/pkg/validator"

	// Camadas para Injeção de Dependências
	"financetracker/internal/api/auth"
	"financetracker/internal/api/creditcard"
	"financetracker/internal/api/health"
	"financetracker/internal/api/router"
	"financetracker/internal/api/user"
	"financetracker/internal/repository/creditcardrepo"
	"financetracker/internal/repository/userrepo"
	"financetracker/internal/service/authservice"
	"financetracker/internal/service/creditcardservice"
	"financetracker/internal/service/userservice"
)

// @title FinanceTracker API
// @version 1.0
// @description API de finanças pessoais: usuários e cartões de crédito.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Informe "Bearer {token}"
func main() {
	boot := logger.NewLogger("info")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos apenas com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		boot.Warn("⚠️ Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.", nil)
	}

	// 1. Configuração e Inicialização
	cfg, err := config.Load(context.Background())
	if err != nil {
		boot.Fatal("Falha ao carregar configuração.", err)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info("⚡ Inicializando serviço FinanceTracker...", map[string]interface{}{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.Database.URL, database.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(context.Background(), db, log, "up"); err != nil {
			log.Fatal("Falha ao aplicar migrações.", err)
		}
		log.Info("Migrações aplicadas.", nil)
	}

	// B. Cache (Redis), só necessário para o rate limiter
	var cacheClient *cache.RedisClient
	var redisCheck health.Pinger
	if cfg.RateLimit.Enabled {
		cacheClient = cache.NewRedisClient(cfg.Redis.Addr)
		defer cacheClient.Close()
		redisCheck = cacheClient
	}

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios
	userRepo := userrepo.NewUserRepository(db, cfg.Database.DBTimeout(), log)
	cardRepo := creditcardrepo.NewCreditCardRepository(db, cfg.Database.DBTimeout(), log)
	txManager := database.NewTxManager(db)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços
	hasher := password.NewHasher(0)
	tokenSvc := token.NewService(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry())
	userSvc := userservice.NewService(userRepo, cardRepo, txManager, hasher, log)
	cardSvc := creditcardservice.NewService(cardRepo, userRepo, txManager, log)
	authSvc := authservice.NewService(userRepo, hasher, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers
	v := validator.New()
	deps := router.Deps{
		Users:          user.NewHandler(userSvc, v, log),
		CreditCards:    creditcard.NewHandler(cardSvc, v, log),
		Health:         health.NewHandler(readinessChecks(health.PingFunc(db.PingContext), redisCheck), log),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	}

	if cfg.Auth.Enabled {
		deps.Tokens = tokenSvc
		deps.Auth = auth.NewHandler(authSvc, v, log)
		log.Info("Autenticação JWT habilitada.", nil)
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimit = router.RateLimit{
			Client:      cacheClient,
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Period(),
		}
		log.Info("Rate limit habilitado.", map[string]interface{}{
			"max_requests": cfg.RateLimit.MaxRequests,
			"period_sec":   cfg.RateLimit.PeriodSec,
		})
	}

	// 4. Configuração e Início do Roteador/Servidor
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor FinanceTracker ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}

// readinessChecks monta as dependências verificadas em /health/ready.
// redis nil (rate limiter desligado) fica fora da verificação.
func readinessChecks(postgres, redis health.Pinger) map[string]health.Pinger {
	checks := map[string]health.Pinger{"postgres": postgres}
	if redis != nil {
		checks["redis"] = redis
	}
	return checks
}
