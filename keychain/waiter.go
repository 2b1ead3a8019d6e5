package keychain

import (
	"context"
	"errors"
	"time"
)

// Defaults for the readiness wait. The handshake normally completes within
// one or two polls; the timeout exists so a wedged frame fails loudly
// instead of hanging the caller.
const (
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultHandshakeTimeout = 5 * time.Second
)

// ErrHandshakeTimeout is returned by [AwaitReady] when the channel never
// reported ready within the deadline. It is distinguishable from transport
// errors via errors.Is.
var ErrHandshakeTimeout = errors.New("keychain handshake timed out")

// AwaitReady polls ch.Ready at the given interval until it reports true, the
// timeout elapses, or ctx is cancelled. Zero or negative interval/timeout
// fall back to the package defaults.
func AwaitReady(ctx context.Context, ch Channel, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	if ch.Ready() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			if ch.Ready() {
				return nil
			}
		case <-deadline.C:
			return ErrHandshakeTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
