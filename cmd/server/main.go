package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/cache"
	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/middleware"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/router"
	"github.com/quetrea/youtube-clone/internal/services"
	"github.com/quetrea/youtube-clone/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("addr", cfg.Server.Host+":"+cfg.Server.Port))

	db, err := database.Init(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cacheClient, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheClient.Close()

	uploader, err := utils.NewCloudinaryService(&cfg.Cloudinary, logger)
	if err != nil {
		return err
	}

	repos, err := repositories.NewCollection(db, logger)
	if err != nil {
		return err
	}
	svcs, err := services.NewCollection(repos, uploader, cacheClient, logger)
	if err != nil {
		return err
	}

	responseBuilder := response.NewBuilder(response.DefaultConfig(), logger)
	handler := router.New(router.Deps{
		Config:   cfg,
		Services: svcs,
		Uploader: uploader,
		DB:       db,
		Response: responseBuilder,
		Auth:     middleware.NewAuth(&cfg.Auth, svcs.User, logger),
		Limiter:  middleware.NewRateLimiter(cacheClient, &cfg.Security, logger),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func initLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err == nil {
		zcfg.Level = level
	}

	return zcfg.Build()
}
