package upstream

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultBinary = "whois"

// SystemClient shells out to the local whois binary. Callers are responsible
// for vetting the domain against the allow-list first; this client never
// receives an unvalidated string.
type SystemClient struct {
	binary   string
	throttle *Throttle
}

// NewSystemClient builds a client around the given whois binary, defaulting
// to the one on PATH.
func NewSystemClient(binary string, throttle *Throttle) *SystemClient {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}

	return &SystemClient{binary: binary, throttle: throttle}
}

// Lookup runs `whois <domain>` under the context deadline. The process is
// killed when the deadline expires and the failure reports as a timeout.
func (s *SystemClient) Lookup(ctx context.Context, domain string) (string, error) {
	if s.throttle != nil {
		if err := s.throttle.Wait(ctx, ThrottleKey(domain)); err != nil {
			return "", err
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, domain)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%s command: %w", s.binary, ctxErr)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s command: %w: %s", s.binary, err, msg)
		}
		return "", fmt.Errorf("%s command: %w", s.binary, err)
	}

	return stdout.String(), nil
}

// Available reports whether the configured binary can be found on PATH.
// The readiness probe uses this to flag hosts without a whois installation.
func (s *SystemClient) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// Binary reports the resolved binary name.
func (s *SystemClient) Binary() string {
	return s.binary
}
