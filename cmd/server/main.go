package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/bazario/auth-service/internal/auth"
	"github.com/bazario/auth-service/internal/config"
	"github.com/bazario/auth-service/internal/database"
	"github.com/bazario/auth-service/internal/handler"
	"github.com/bazario/auth-service/internal/middleware"
	"github.com/bazario/auth-service/internal/queue"
	"github.com/bazario/auth-service/internal/repository"
	"github.com/bazario/auth-service/internal/router"
	"github.com/bazario/auth-service/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Crypto services: immutable after construction, shared by every
	// request.
	hasher := auth.NewHasher()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	sessions := repository.NewSessionRepo(db)

	creds := service.NewCredentialService(users, roles, sessions, hasher, tokens,
		cfg.HashWorkers, queue.PublishAuthActivity)

	// Audit consumer runs in the background with its own reconnect loop.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	// Redis is optional: a nil client turns the limiter into a
	// pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, creds), tokens, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
