package scheduler

import (
	"time"

	"github.com/adorzia/atelier/pkg/logger"
)

// Option applies a configuration option to the AutoApprover.
type Option func(*AutoApprover)

// WithSchedule sets the cron spec, e.g. "@every 5m" or "*/10 * * * *".
func WithSchedule(spec string) Option {
	return func(a *AutoApprover) {
		if spec != "" {
			a.schedule = spec
		}
	}
}

// WithBatchSize caps how many projects one query pulls.
func WithBatchSize(n int) Option {
	return func(a *AutoApprover) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *AutoApprover) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *AutoApprover) {
		if now != nil {
			a.now = now
		}
	}
}
