// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/cost-estimator/pkg/constants"
)

// ValidateStorageDriver checks the configured plan and lead store.
func ValidateStorageDriver(driver, path, dsn string) error {
	switch driver {
	case constants.StorageMemory:
		return nil
	case constants.StorageSQLite:
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("storage.path is required for the %s driver", driver)
		}
		return nil
	case constants.StoragePostgres:
		if strings.TrimSpace(dsn) == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", driver)
		}
		return nil
	}
	return fmt.Errorf("expected storage driver of %s, %s or %s, got %q",
		constants.StorageMemory, constants.StorageSQLite, constants.StoragePostgres, driver)
}

// ValidateRateLimit checks the lead limiter settings.
func ValidateRateLimit(backend string, window time.Duration, max int, redisAddress string) error {
	if window <= 0 {
		return fmt.Errorf("rateLimit.window must be positive, got %s", window)
	}
	if max < 1 {
		return fmt.Errorf("rateLimit.max must be at least 1, got %d", max)
	}
	switch backend {
	case constants.RateLimitMemory:
		return nil
	case constants.RateLimitRedis:
		if strings.TrimSpace(redisAddress) == "" {
			return fmt.Errorf("rateLimit.redis.address is required for the %s backend", backend)
		}
		return nil
	}
	return fmt.Errorf("expected rate limit backend of %s or %s, got %q",
		constants.RateLimitMemory, constants.RateLimitRedis, backend)
}

// ValidateLogLevel checks a zap level name.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unsupported log level %q", level)
}

// ValidateLogFormat checks a zap encoder name.
func ValidateLogFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("unsupported log format %q", format)
}
