package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
)

// Init creates the manager, runs migrations and waits for the database to
// become healthy. Connection attempts retry with exponential backoff since
// the database container often starts after the server.
func Init(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	var manager *Manager

	connect := func() error {
		var err error
		manager, err = NewManager(&cfg.Database, logger)
		if err != nil {
			logger.Warn("database connection attempt failed", zap.Error(err))
		}
		return err
	}

	policy := backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(cfg.Database.RetryBackoff),
			backoff.WithMaxInterval(10*time.Second),
		),
		uint64(cfg.Database.MaxRetryAttempts),
	)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationsPath := resolveMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("running database migrations", zap.String("path", migrationsPath))
	if err := manager.Migrate(migrationsPath); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.health.WaitForHealthy(ctx); err != nil {
		manager.Close()
		return nil, fmt.Errorf("database failed to become healthy: %w", err)
	}
	manager.health.StartMonitoring()

	return manager, nil
}

// resolveMigrationsPath falls back through common locations so the binary
// works both from the repo root and from a container image.
func resolveMigrationsPath(configPath string) string {
	candidates := []string{configPath, "./migrations", "../migrations", "/app/migrations"}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "./migrations"
}

// WithTransaction runs fn inside a transaction, rolling back on error or
// panic.
func WithTransaction(ctx context.Context, m *Manager, fn func(*sql.Tx) error) error {
	tx, err := m.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
