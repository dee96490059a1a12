package monitoring

import "time"

// Summary surfaces aggregated monitoring data for the operations endpoint.
type Summary struct {
	GeneratedAt  time.Time           `json:"generated_at"`
	Lookups      LookupSummary       `json:"lookups"`
	Cache        CacheSummary        `json:"cache"`
	RateLimited  uint64              `json:"rate_limited"`
	Availability AvailabilitySummary `json:"availability"`
	Maintenance  MaintenanceSummary  `json:"maintenance"`
}

type LookupSummary struct {
	Success                uint64        `json:"success"`
	Failure                uint64        `json:"failure"`
	Timeout                uint64        `json:"timeout"`
	Invalid                uint64        `json:"invalid"`
	AverageDurationSeconds float64       `json:"average_duration_seconds"`
	LastDuration           time.Duration `json:"last_duration"`
	LastCompletedAt        time.Time     `json:"last_completed_at"`
}

type CacheSummary struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Stores uint64 `json:"stores"`
}

type AvailabilitySummary struct {
	Methods []AvailabilityMethodSummary `json:"methods"`
}

type AvailabilityMethodSummary struct {
	Method        string    `json:"method"`
	Available     uint64    `json:"available"`
	Registered    uint64    `json:"registered"`
	Errors        uint64    `json:"errors"`
	LastVerdict   string    `json:"last_verdict,omitempty"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

type MaintenanceSummary struct {
	Jobs []MaintenanceJobSummary `json:"jobs"`
}

type MaintenanceJobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	if module := ensureModule(); module != nil && module.stats != nil {
		return module.stats.summary()
	}
	return Summary{GeneratedAt: time.Now()}
}
