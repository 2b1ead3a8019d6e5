// Package keychain defines the cross-document RPC contract to the
// authorization service and the bounded readiness wait callers must perform
// before issuing remote calls.
//
// The package holds no transport of its own: embedders supply the [Channel]
// implementation. What it fixes is the waiting discipline — a fixed-interval
// poll with a deadline, never an unbounded spin — so a wedged handshake
// surfaces as [ErrHandshakeTimeout] instead of a hang.
package keychain
