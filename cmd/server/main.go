package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/couples-api/internal/cache"
	"github.com/arnold/couples-api/internal/config"
	"github.com/arnold/couples-api/internal/database"
	"github.com/arnold/couples-api/internal/handlers"
	"github.com/arnold/couples-api/internal/logger"
	"github.com/arnold/couples-api/internal/middleware"
	"github.com/arnold/couples-api/internal/routes"
	"github.com/arnold/couples-api/internal/services"
	"github.com/arnold/couples-api/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("database ready", zap.Bool("postgres", cfg.UsesPostgres()))

	st := store.New(db)
	revoker := cache.New(context.Background(), cfg.RedisURL, log)
	identity := middleware.NewJWTIdentity(cfg.JWTSecret, cfg.JWTTTL)

	activity := services.NewActivityService(st, log)
	h := handlers.New(st, handlers.Services{
		Auth:        services.NewAuthService(st, identity, revoker, services.NewTokenInfoVerifier(), cfg.GoogleClientIDs, log),
		Users:       services.NewUserService(st),
		Couples:     services.NewCoupleService(st, activity, log),
		Challenges:  services.NewChallengeService(st, activity, log),
		Tasks:       services.NewTaskService(st, activity, log),
		Completions: services.NewCompletionService(st, activity, log),
		Activity:    activity,
	}, log)

	app := routes.NewApp(cfg, log)
	routes.Setup(app, h, identity, revoker, middleware.NewRateLimiter(cfg.RateLimitPerMinute))

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if c, ok := revoker.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
