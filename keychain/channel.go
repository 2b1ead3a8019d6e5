package keychain

import (
	"context"
	"encoding/json"
)

// Channel is the cross-document RPC surface to the authorization service's
// keychain frame. Open and Close toggle the frame's visibility; Call proxies
// a remote method once the handshake has completed.
//
// Implementations live with the embedder (an iframe bridge in browsers, an
// HTTP long-poll client in headless holders). Callers must gate Call behind
// [AwaitReady].
type Channel interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Ready reports whether the remote-method proxy handshake has
	// completed.
	Ready() bool

	// Call invokes a remote keychain method with JSON-encoded args and
	// returns the raw JSON result.
	Call(ctx context.Context, method string, args any) (json.RawMessage, error)
}

// Remote method names understood by the keychain.
const (
	// MethodSubscribeGrant blocks server-side until the grant keyed by
	// the supplied session key GUID has been confirmed, then returns it.
	MethodSubscribeGrant = "session.subscribe"
)
