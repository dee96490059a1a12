package checks

import (
	"context"
	"time"

	"github.com/domainlens/whoisproxy/internal/monitoring"
)

// BinaryLocator reports whether the fallback whois binary can be resolved.
type BinaryLocator interface {
	Available() bool
	Binary() string
}

// WhoisBinary returns a readiness probe flagging hosts where the system
// whois command is missing. The service still works without it, but loses
// the fallback tier, so absence reports as degraded rather than down.
func WhoisBinary(locator BinaryLocator) monitoring.Check {
	return monitoring.NewCheck("whois_binary", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if locator == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "fallback client not configured",
				Duration: time.Since(start),
			}
		}

		if !locator.Available() {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  locator.Binary() + " not found on PATH; fallback tier disabled",
				Duration: time.Since(start),
			}
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
		}
	})
}
