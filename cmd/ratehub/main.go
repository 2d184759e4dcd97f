package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/auth"
	"github.com/storeratings/ratehub/internal/config"
	"github.com/storeratings/ratehub/internal/logger"
	"github.com/storeratings/ratehub/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := auth.Init(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour); err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal("failed to migrate database", "error", err)
	}

	if err := db.SeedAdmin(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminAddress); err != nil {
		logger.Fatal("failed to seed admin user", "error", err)
	}

	r := router.NewRouter(cfg.AllowedOrigins)

	logger.Info("starting server", "port", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", "error", err)
	}
}
