package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/server"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Console = true
	logCfg.FilePath = os.Getenv("LOG_FILE")
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logCfg.Level = logger.ParseLevel(lvl)
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	store, err := openStore()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	srv := server.New(store)
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	logger.Info("tasksync server starting", logger.F("port", port))
	if err := srv.Start(":" + port); err != nil {
		logger.Error("Server failed", logger.F("error", err))
	}
}

// openStore picks the in-memory store when STORE=memory, PostgreSQL otherwise
func openStore() (server.Store, error) {
	if os.Getenv("STORE") == "memory" {
		logger.Warn("Using in-memory store; data is lost on exit")
		return server.NewMemoryStore(), nil
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/tasksync?sslmode=disable"
	}
	return server.OpenPostgres(dbURL)
}
