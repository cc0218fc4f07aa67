package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of a single health check.
type HealthStatus struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	ResponseTime time.Duration          `json:"response_time"`
	Errors       []string               `json:"errors,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// HealthChecker periodically verifies database connectivity and pool
// saturation.
type HealthChecker struct {
	manager  *Manager
	logger   *zap.Logger
	interval time.Duration

	mu     sync.RWMutex
	last   *HealthStatus
	stopCh chan struct{}
	once   sync.Once
}

func NewHealthChecker(manager *Manager, logger *zap.Logger, interval time.Duration) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Check runs the health probes and caches the result.
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := hc.manager.DB().PingContext(pingCtx); err != nil {
		status.Errors = append(status.Errors, fmt.Sprintf("connectivity: %v", err))
	}

	stats := hc.manager.Stats()
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	saturated := false
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)
		status.Details["utilization"] = utilization
		saturated = utilization > 0.9
	}

	status.ResponseTime = time.Since(start)
	switch {
	case len(status.Errors) > 0:
		status.Status = StatusUnhealthy
	case saturated:
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool near saturation")
	default:
		status.Status = StatusHealthy
	}

	hc.mu.Lock()
	hc.last = status
	hc.mu.Unlock()

	return status
}

// LastStatus returns the most recent check result, or nil before the first
// check.
func (hc *HealthChecker) LastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.last
}

// IsHealthy reports whether the last check passed.
func (hc *HealthChecker) IsHealthy() bool {
	status := hc.LastStatus()
	return status != nil && status.Status == StatusHealthy
}

// WaitForHealthy polls with exponential backoff until the database reports
// healthy or ctx expires.
func (hc *HealthChecker) WaitForHealthy(ctx context.Context) error {
	wait := time.Second
	const maxWait = 10 * time.Second

	for {
		status := hc.Check(ctx)
		if status.Status == StatusHealthy {
			hc.logger.Info("database is healthy",
				zap.Duration("response_time", status.ResponseTime))
			return nil
		}

		hc.logger.Debug("database not healthy yet",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
			zap.Duration("retry_in", wait))

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database health: %w", ctx.Err())
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
}

// StartMonitoring begins periodic background checks.
func (hc *HealthChecker) StartMonitoring() {
	hc.once.Do(func() {
		go func() {
			ticker := time.NewTicker(hc.interval)
			defer ticker.Stop()
			for {
				select {
				case <-hc.stopCh:
					return
				case <-ticker.C:
					status := hc.Check(context.Background())
					if status.Status != StatusHealthy {
						hc.logger.Warn("periodic database health check failed",
							zap.String("status", status.Status),
							zap.Strings("errors", status.Errors))
					}
				}
			}
		}()
	})
}

// Stop terminates background monitoring.
func (hc *HealthChecker) Stop() {
	select {
	case <-hc.stopCh:
	default:
		close(hc.stopCh)
	}
}
