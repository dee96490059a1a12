// Package maintenance runs the background pruning jobs: expired cache
// entries and idle per-TLD throttle limiters.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/internal/upstream"
	"github.com/domainlens/whoisproxy/pkg/logger"
)

const defaultSchedule = "*/10 * * * *"

// Cleaner coordinates the periodic pruning work. The memory cache backend
// only drops expired entries lazily on reads, so without the cleaner a
// burst of one-off domains would pin memory until each key is re-requested.
type Cleaner struct {
	store    cache.Pruner
	throttle *upstream.Throttle
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *zap.Logger
	enabled  bool
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used in log timestamps and duration math.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the pruning run.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. Either dependency may be nil, in which
// case the corresponding job is skipped; with both nil the cleaner is inert.
func NewCleaner(store cache.Pruner, throttle *upstream.Throttle, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:    store,
		throttle: throttle,
		schedule: defaultSchedule,
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.store != nil || cleaner.throttle != nil

	return cleaner
}

// Start registers the pruning job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	c.log.Info("maintenance scheduler started", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured pruning routines sequentially. Also used
// directly in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.store != nil {
		errs = multierr.Append(errs, c.pruneCache(ctx))
	}

	if c.throttle != nil {
		c.pruneThrottle()
	}

	return errs
}

func (c *Cleaner) pruneCache(ctx context.Context) error {
	start := c.now()
	removed, err := c.store.PruneExpired(ctx)
	duration := c.now().Sub(start)

	if err != nil {
		monitoring.RecordMaintenanceRun("cache_prune", "failure", err.Error(), duration)
		return fmt.Errorf("maintenance: prune cache: %w", err)
	}

	monitoring.RecordMaintenanceRun("cache_prune", "success", "", duration)
	c.log.Debug("pruned expired cache entries", zap.Int("removed", removed))
	return nil
}

func (c *Cleaner) pruneThrottle() {
	start := c.now()
	removed := c.throttle.PruneIdle()
	monitoring.RecordMaintenanceRun("throttle_prune", "success", "", c.now().Sub(start))
	c.log.Debug("pruned idle throttle limiters", zap.Int("removed", removed))
}
