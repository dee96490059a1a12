package monitoring

import (
	"strings"
	"time"
)

// RecordLookup captures a WHOIS lookup outcome: the result class, the tier
// that produced (or last attempted) the answer, and the end-to-end duration.
func RecordLookup(result, tier string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	result = normalizeLabel(result)
	tier = normalizeLabel(tier)
	module.metrics.lookupTotal.WithLabelValues(result, tier).Inc()
	observeDuration(module.metrics.lookupDuration.WithLabelValues(tier), duration)
	module.stats.recordLookup(result, duration)
}

// RecordCacheEvent counts lookup-cache activity: "hit", "miss" or "store".
func RecordCacheEvent(event string) {
	module := ensureModule()
	if module == nil {
		return
	}
	event = normalizeLabel(event)
	module.metrics.cacheEvents.WithLabelValues(event).Inc()
	module.stats.recordCacheEvent(event)
}

// RecordRateLimited counts a request rejected by the per-client ceiling.
func RecordRateLimited() {
	module := ensureModule()
	if module == nil {
		return
	}
	module.metrics.rateLimited.Inc()
	module.stats.recordRateLimited()
}

// ObserveAPILatency captures the HTTP request latency for the supplied route.
func ObserveAPILatency(method, path, status string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "UNKNOWN"
	}
	path = sanitizePath(path)
	if path == "" {
		path = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "unknown"
	}
	module.metrics.apiLatency.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAvailabilityCheck captures an availability verdict per probe method.
func RecordAvailabilityCheck(method, result string) {
	module := ensureModule()
	if module == nil {
		return
	}
	method = normalizeLabel(method)
	result = normalizeLabel(result)
	module.metrics.availabilityChecks.WithLabelValues(method, result).Inc()
	module.stats.availabilityEntry(method).record(result)
}

// RecordMaintenanceRun records the completion of a maintenance job.
func RecordMaintenanceRun(job, result, message string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	jobID := normalizeLabel(job)
	if jobID == "" {
		jobID = "unknown"
	}
	result = normalizeLabel(result)
	if result == "" {
		result = "unknown"
	}
	module.metrics.maintenanceRuns.WithLabelValues(jobID, result).Inc()
	observeDuration(module.metrics.maintenanceLatency.WithLabelValues(jobID), duration)
	if result == "success" {
		module.metrics.maintenanceLastRun.WithLabelValues(jobID).Set(float64(time.Now().Unix()))
	}
	stats := module.stats.maintenanceEntry(jobID)
	stats.record(result, strings.TrimSpace(message), duration)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}

func sanitizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "/" {
		return "root"
	}
	path = strings.Trim(path, "/")
	path = strings.ReplaceAll(path, " ", "_")
	if path == "" {
		return "root"
	}
	return path
}
