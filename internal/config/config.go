// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/regatta/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the scoreboard change queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoreboard workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// TieBreak orders equal totals: sail_number or none.
	TieBreak string `koanf:"tie_break"`

	// SeedDemo loads the demo regatta at startup.
	SeedDemo bool `koanf:"seed_demo"`

	// CORSOrigins lists the origins allowed by the API and live feed.
	CORSOrigins []string `koanf:"cors_origins"`

	// LiveWriteTimeoutMS bounds each websocket write.
	LiveWriteTimeoutMS int `koanf:"live_write_timeout_ms"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		QueueSize:          1024,
		WorkerCount:        2,
		DedupeSize:         10_000,
		TieBreak:           string(scoring.TieBreakSailNumber),
		SeedDemo:           false,
		CORSOrigins:        []string{"*"},
		LiveWriteTimeoutMS: 10_000,
	}
}

// LiveWriteTimeout returns LiveWriteTimeoutMS as a duration.
func (c *Config) LiveWriteTimeout() time.Duration {
	return time.Duration(c.LiveWriteTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.LiveWriteTimeoutMS < 1:
		return fmt.Errorf("%w: live_write_timeout_ms must be positive, got %d", ErrInvalidConfig, c.LiveWriteTimeoutMS)
	}
	if _, err := scoring.ParseTieBreak(c.TieBreak); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
