package storage

import (
	"context"
	"errors"
)

// Logical keys used by the session lifecycle. Values under every key are
// JSON-encoded.
const (
	// KeySigner holds the ephemeral session keypair.
	KeySigner = "sessionSigner"
	// KeySession holds the confirmed session grant.
	KeySession = "session"
	// KeyPolicies holds the requested-policy snapshot taken at
	// authorization time.
	KeyPolicies = "sessionPolicies"
	// KeyConnector holds the last-used-connector marker.
	KeyConnector = "lastUsedConnector"
)

// ErrStoreUnavailable wraps backend failures so callers can distinguish
// "absent" from "could not read".
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the injectable key/value persistence contract for session state.
// Implementations must treat a missing key as (nil, false, nil), never as an
// error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionKeys lists every key that together makes up one session. The set is
// always written and cleared as a unit.
func SessionKeys() []string {
	return []string{KeySigner, KeySession, KeyPolicies, KeyConnector}
}

// ClearSession removes all session keys in one sweep. Every key is attempted
// even when an earlier delete fails; the first error is returned.
func ClearSession(ctx context.Context, s Store) error {
	var firstErr error
	for _, key := range SessionKeys() {
		if err := s.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
