package main

import (
	"context"
	"log"
	"strconv"

	"github.com/camshop/backend/internal/client"
	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/db"
	"github.com/camshop/backend/internal/handler"
	"github.com/camshop/backend/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	store, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}
	defer func() {
		_ = store.Close(ctx)
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	blacklist := service.NewBlacklist()

	authSvc, err := service.NewAuthService(store, blacklist, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	mailer := client.NewSMTPMailer(cfg.SMTP)
	if !mailer.IsConfigured() {
		log.Printf("SMTP mailer is not configured; password reset emails will fail")
	}

	media := client.NewMediaClient(cfg.Media)
	if !media.IsConfigured() {
		log.Printf("Media client is not configured; image uploads will fail")
	}

	maxLimit, err := strconv.ParseInt(cfg.Server.MaxPageLimit, 10, 64)
	if err != nil || maxLimit <= 0 {
		log.Fatalf("Invalid MAX_PAGE_LIMIT: %q", cfg.Server.MaxPageLimit)
	}

	userSvc := service.NewUserService(store, mailer, media, authSvc, cfg.Server.AppURL, maxLimit)

	router := handler.NewRouter(cfg.Server, authSvc, userSvc)

	log.Printf("Starting camshop API server on :%s (env=%s)", cfg.Server.Port, cfg.Server.Env)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
