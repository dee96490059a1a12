package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

type statStore struct {
	lookupSuccess atomic.Uint64
	lookupFailure atomic.Uint64
	lookupTimeout atomic.Uint64
	lookupInvalid atomic.Uint64

	lookupTotalDuration atomic.Uint64 // nanoseconds
	lookupCount         atomic.Uint64
	lookupLastDuration  atomic.Int64
	lookupLastAt        atomic.Int64

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	cacheStores atomic.Uint64

	rateLimited atomic.Uint64

	availability sync.Map // string -> *availabilityStats
	maintenance  sync.Map // string -> *maintenanceStats
}

func newStatStore() *statStore {
	return &statStore{}
}

func (s *statStore) summary() Summary {
	totalDuration := s.lookupTotalDuration.Load()
	count := s.lookupCount.Load()
	var avgSeconds float64
	if count > 0 {
		avgSeconds = float64(totalDuration) / float64(count) / float64(time.Second)
	}

	return Summary{
		GeneratedAt: time.Now(),
		Lookups: LookupSummary{
			Success:                s.lookupSuccess.Load(),
			Failure:                s.lookupFailure.Load(),
			Timeout:                s.lookupTimeout.Load(),
			Invalid:                s.lookupInvalid.Load(),
			AverageDurationSeconds: avgSeconds,
			LastDuration:           time.Duration(s.lookupLastDuration.Load()),
			LastCompletedAt:        time.Unix(0, s.lookupLastAt.Load()),
		},
		Cache: CacheSummary{
			Hits:   s.cacheHits.Load(),
			Misses: s.cacheMisses.Load(),
			Stores: s.cacheStores.Load(),
		},
		RateLimited: s.rateLimited.Load(),
		Availability: AvailabilitySummary{
			Methods: s.cloneAvailability(),
		},
		Maintenance: MaintenanceSummary{
			Jobs: s.cloneMaintenance(),
		},
	}
}

func (s *statStore) recordLookup(result string, duration time.Duration) {
	switch result {
	case "success":
		s.lookupSuccess.Add(1)
	case "timeout":
		s.lookupTimeout.Add(1)
	case "invalid":
		s.lookupInvalid.Add(1)
	default:
		s.lookupFailure.Add(1)
	}

	if duration < 0 {
		duration = 0
	}
	s.lookupTotalDuration.Add(uint64(duration))
	s.lookupCount.Add(1)
	s.lookupLastDuration.Store(int64(duration))
	s.lookupLastAt.Store(time.Now().UnixNano())
}

func (s *statStore) recordCacheEvent(event string) {
	switch event {
	case "hit":
		s.cacheHits.Add(1)
	case "miss":
		s.cacheMisses.Add(1)
	case "store":
		s.cacheStores.Add(1)
	}
}

func (s *statStore) recordRateLimited() {
	s.rateLimited.Add(1)
}

func (s *statStore) cloneAvailability() []AvailabilityMethodSummary {
	summaries := []AvailabilityMethodSummary{}
	s.availability.Range(func(key, value any) bool {
		method := key.(string)
		stats := value.(*availabilityStats)
		summaries = append(summaries, stats.snapshot(method))
		return true
	})
	return summaries
}

func (s *statStore) cloneMaintenance() []MaintenanceJobSummary {
	summaries := []MaintenanceJobSummary{}
	s.maintenance.Range(func(key, value any) bool {
		job := key.(string)
		stats := value.(*maintenanceStats)
		summaries = append(summaries, stats.snapshot(job))
		return true
	})
	return summaries
}

func (s *statStore) availabilityEntry(method string) *availabilityStats {
	value, ok := s.availability.Load(method)
	if ok {
		return value.(*availabilityStats)
	}
	stats := &availabilityStats{}
	actual, _ := s.availability.LoadOrStore(method, stats)
	return actual.(*availabilityStats)
}

func (s *statStore) maintenanceEntry(job string) *maintenanceStats {
	value, ok := s.maintenance.Load(job)
	if ok {
		return value.(*maintenanceStats)
	}
	stats := &maintenanceStats{}
	actual, _ := s.maintenance.LoadOrStore(job, stats)
	return actual.(*maintenanceStats)
}

type availabilityStats struct {
	available   atomic.Uint64
	registered  atomic.Uint64
	errors      atomic.Uint64
	lastVerdict atomic.Value // string
	lastChecked atomic.Int64
}

func (a *availabilityStats) record(result string) {
	switch result {
	case "available":
		a.available.Add(1)
	case "registered":
		a.registered.Add(1)
	default:
		a.errors.Add(1)
	}
	a.lastVerdict.Store(result)
	a.lastChecked.Store(time.Now().UnixNano())
}

func (a *availabilityStats) snapshot(method string) AvailabilityMethodSummary {
	verdict, _ := a.lastVerdict.Load().(string)

	return AvailabilityMethodSummary{
		Method:        method,
		Available:     a.available.Load(),
		Registered:    a.registered.Load(),
		Errors:        a.errors.Load(),
		LastVerdict:   verdict,
		LastCheckedAt: time.Unix(0, a.lastChecked.Load()),
	}
}

type maintenanceStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	consecutiveFailures  atomic.Uint64
	totalRuns            atomic.Uint64
	lastSuccessfulRun    atomic.Int64
	consecutiveSuccesses atomic.Uint64
}

func (m *maintenanceStats) snapshot(job string) MaintenanceJobSummary {
	status, _ := m.lastStatus.Load().(string)
	errMsg, _ := m.lastError.Load().(string)
	lastRun := time.Unix(0, m.lastRun.Load())
	lastSuccess := time.Unix(0, m.lastSuccessfulRun.Load())

	return MaintenanceJobSummary{
		Job:                 job,
		LastStatus:          status,
		LastRunAt:           lastRun,
		LastDuration:        time.Duration(m.lastDuration.Load()),
		LastError:           errMsg,
		ConsecutiveFailures: m.consecutiveFailures.Load(),
		ConsecutiveSuccess:  m.consecutiveSuccesses.Load(),
		LastSuccessAt:       lastSuccess,
		TotalRuns:           m.totalRuns.Load(),
	}
}

func (m *maintenanceStats) record(result, message string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	now := time.Now()
	m.lastStatus.Store(result)
	m.lastError.Store(message)
	m.lastRun.Store(now.UnixNano())
	m.lastDuration.Store(int64(duration))
	m.totalRuns.Add(1)

	switch result {
	case "success":
		m.consecutiveFailures.Store(0)
		m.consecutiveSuccesses.Add(1)
		m.lastSuccessfulRun.Store(now.UnixNano())
	default:
		m.consecutiveFailures.Add(1)
		m.consecutiveSuccesses.Store(0)
	}
}
