package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"financetracker/config"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
)

// Uso: migrate [up|down|status|version|redo|reset|up-to N|down-to N]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: .env não encontrado. Usando apenas o ambiente do sistema: %v", err)
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("goose: %v", err)
	}
	flag.Parse()

	db, err := database.NewPostgresDB(cfg.Database.URL, database.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("goose: failed to connect to DB: %v\n", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v\n", err)
		}
	}()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := database.Migrate(context.Background(), db, logger.NewLogger(cfg.LogLevel), command, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
