package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domainlens/whoisproxy/internal/api"
	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/internal/app/maintenance"
	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/internal/handlers"
	"github.com/domainlens/whoisproxy/internal/middleware"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/internal/monitoring/checks"
	"github.com/domainlens/whoisproxy/internal/services"
	"github.com/domainlens/whoisproxy/internal/upstream"
)

const whoisBinary = "whois"

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	Store      cache.Store
	Redis      *cache.RedisStore
	Monitoring *monitoring.Module
	Cleaner    *maintenance.Cleaner
	RateStore  middleware.RateStore
	Router     *gin.Engine
}

// bootstrapRuntime initialises the cache, upstream clients, services, and the
// HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	gin.SetMode(ginMode(cfg.Server.Mode))

	// Cache backend. A failed Redis connection degrades to the in-process
	// cache rather than refusing to start; the health probe reports it.
	stack.Store = cache.NewMemoryStore()
	if cfg.RedisEnabled() {
		redisStore, err := cache.NewRedisStore(cfg.RedisStoreConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to in-memory cache", zap.Error(err))
		} else {
			stack.Redis = redisStore
			stack.Store = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Addr))
		}
	}

	// Upstream clients share one per-registry throttle.
	throttle := upstream.NewThrottle(cfg.Lookup.ThrottleRPS, cfg.Lookup.ThrottleBurst)
	primary := upstream.NewClient(cfg.Lookup.Timeout, cfg.Lookup.Server, throttle)
	system := upstream.NewSystemClient(whoisBinary, throttle)

	var fallback services.RawLookuper
	if system.Available() {
		fallback = system
	} else {
		log.Warn("system whois binary not found; fallback tier disabled")
	}

	lookupSvc, err := services.NewLookupService(primary, fallback, stack.Store, cfg.Cache.TTL, cfg.Lookup.Timeout)
	if err != nil {
		return nil, fmt.Errorf("initialise lookup service: %w", err)
	}

	parsedSvc, err := services.NewParsedService(lookupSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise parsed service: %w", err)
	}

	rdap := upstream.NewRDAPClient("", cfg.Lookup.Timeout)
	nsProbe := upstream.NewNSProbe("", cfg.Lookup.Timeout)

	availabilitySvc, err := services.NewAvailabilityService(rdap, lookupSvc, nsProbe)
	if err != nil {
		return nil, fmt.Errorf("initialise availability service: %w", err)
	}

	if cfg.Monitoring.Enabled {
		stack.Monitoring, err = monitoring.NewModule(monitoring.Options{})
		if err != nil {
			return nil, fmt.Errorf("initialise monitoring: %w", err)
		}
		monitoring.SetModule(stack.Monitoring)

		var pinger checks.RedisPinger
		if stack.Redis != nil {
			pinger = stack.Redis
		}
		health := stack.Monitoring.Health()
		health.RegisterReadiness(checks.Redis(pinger, cfg.RedisEnabled(), cfg.Cache.Redis.Timeout))
		health.RegisterReadiness(checks.WhoisBinary(system))
		if cfg.Maintenance.Enabled {
			health.RegisterReadiness(checks.Maintenance(0))
		}
	}

	if cfg.Maintenance.Enabled {
		var pruner cache.Pruner
		if memory, ok := stack.Store.(*cache.MemoryStore); ok {
			pruner = memory
		}
		stack.Cleaner = maintenance.NewCleaner(pruner, throttle,
			maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	switch cfg.RateLimit.Backend {
	case "cache":
		stack.RateStore = middleware.NewStoreRateStore(stack.Store)
	default:
		stack.RateStore = middleware.NewMemoryRateStore()
	}

	whoisHandler, err := handlers.NewWhoisHandler(lookupSvc, parsedSvc, availabilitySvc)
	if err != nil {
		return nil, fmt.Errorf("initialise whois handler: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Deps{
		Config:     cfg,
		Whois:      whoisHandler,
		Monitoring: stack.Monitoring,
		Summary:    handlers.NewMonitoringHandler(cfg),
		RateStore:  stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
