package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/api/handler"
	"teaching-hours/backend/internal/api/router"
	"teaching-hours/backend/internal/repository"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/database"
	"teaching-hours/backend/pkg/jwt"
	applogger "teaching-hours/backend/pkg/logger"
	"teaching-hours/backend/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	// 4. Redis is optional: without it logout revocation and login rate limiting are off
	deps := router.Deps{DB: db}
	var blacklist service.TokenBlacklist
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limit disabled", zap.Error(err))
	} else {
		blacklist = rdb
		deps.Blacklist = rdb
		deps.Limiter = rdb
	}

	// 5. JWT
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. repository → service → handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(cfg, svc)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	created, err := svc.User.EnsureAdmin(seedCtx, cfg.Auth.SeedAdminUsername, cfg.Auth.SeedAdminPassword)
	seedCancel()
	if err != nil {
		logger.Fatal("seed admin failed", zap.Error(err))
	}
	if created {
		logger.Info("initial admin account created", zap.String("username", cfg.Auth.SeedAdminUsername))
	}

	// 7. routes
	engine := router.Setup(cfg, h, jwtMgr, deps, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
