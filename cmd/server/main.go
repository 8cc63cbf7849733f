package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
	"github.com/veilapp/veil-backend/internal/cache"
	"github.com/veilapp/veil-backend/internal/config"
	"github.com/veilapp/veil-backend/internal/db"
	"github.com/veilapp/veil-backend/internal/logger"
	"github.com/veilapp/veil-backend/internal/realtime"
	"github.com/veilapp/veil-backend/internal/server"
	"github.com/veilapp/veil-backend/internal/service/match"
	"github.com/veilapp/veil-backend/internal/service/personality"
	"github.com/veilapp/veil-backend/internal/service/presence"
	"github.com/veilapp/veil-backend/internal/service/user"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	issuer := auth.NewTokenIssuer(cfg)
	tracker := presence.NewTracker(appCtx)
	hub := realtime.NewHub()
	rtRouter := realtime.NewRouter(appCtx, hub, tracker, issuer)

	registrars := []server.Registrar{
		user.NewRegistrar(appCtx, issuer, tracker),
		match.NewRegistrar(appCtx, hub, issuer),
		personality.NewRegistrar(appCtx, issuer),
		rtRouter,
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
