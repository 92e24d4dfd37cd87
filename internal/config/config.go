// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Business tables (rank ladder, weights, status graph) are NOT configurable;
//     they live in the domain packages as versioned constants.
//   - Only operational knobs are loaded here.
package config

import "fmt"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file. ":memory:" keeps everything in process.
	DatabasePath string `koanf:"database_path"`

	// AutoApproveEnabled toggles the in-process auto-approve poller.
	AutoApproveEnabled bool `koanf:"auto_approve_enabled"`

	// AutoApproveSchedule is a cron spec for the poller, e.g. "@every 5m".
	AutoApproveSchedule string `koanf:"auto_approve_schedule"`

	// MaxLeaderboardLimit caps GET /designers/top?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// CommissionRatePerSec and CommissionBurst bound POST /commission.
	CommissionRatePerSec float64 `koanf:"commission_rate_per_sec"`
	CommissionBurst      int     `koanf:"commission_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DatabasePath:         "atelier.db",
		AutoApproveEnabled:   true,
		AutoApproveSchedule:  "@every 5m",
		MaxLeaderboardLimit:  100,
		CommissionRatePerSec: 50,
		CommissionBurst:      100,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case c.AutoApproveEnabled && c.AutoApproveSchedule == "":
		return fmt.Errorf("%w: auto_approve_schedule must be set when the poller is enabled", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.CommissionRatePerSec <= 0 || c.CommissionBurst < 1:
		return fmt.Errorf("%w: commission rate limit must be positive", ErrInvalidConfig)
	}
	return nil
}
