package upstream

import (
	"context"
	"errors"
	"net"
	"os"
)

// IsTimeout reports whether the error chain indicates an expired deadline,
// whichever layer produced it: context deadlines, socket deadlines or a
// killed whois process. Timeouts map to a distinct gateway-timeout status
// because they point at a slow upstream rather than a bad query.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
