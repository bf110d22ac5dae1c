package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/hobbycircles/hobby-circles/internal/app"
	"github.com/hobbycircles/hobby-circles/internal/cache"
	"github.com/hobbycircles/hobby-circles/internal/config"
	"github.com/hobbycircles/hobby-circles/internal/db"
	"github.com/hobbycircles/hobby-circles/internal/handlers"
	"github.com/hobbycircles/hobby-circles/internal/logger"
	"github.com/hobbycircles/hobby-circles/internal/server"
	"github.com/hobbycircles/hobby-circles/internal/service/discovery"
)

func main() {
	// .env is optional, env vars win
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

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

	if cfg.App.ENV == "development" {
		if err := db.SeedSampleData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	svc := discovery.NewService(appCtx)
	h := handlers.New(svc, log)
	router := server.NewRouter(cfg, h, log)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, router); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
