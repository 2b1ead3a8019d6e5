// Package sessionkit issues and manages scoped, time-limited signing
// sessions for blockchain accounts: a user authorizes a session once through
// an external keychain service, after which the holder keeps a local
// ephemeral keypair and a signed grant describing exactly which contract
// methods and message types it may use, until expiry.
//
// The package is designed for concurrent holders: Controller methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (SessionGrant, AccountParams, MetricsSnapshot,
// etc.). Policy normalization, canonical encoding, and subset validation
// live in the policy sub-package; persistence in storage; collaborator
// capabilities in browser, keychain, wallet, and token. Audit dispatch lives
// under internal/ and is never exported directly.
//
// # What this package must NOT do
//
//   - Construct or hold signing keys beyond the session's own ephemeral
//     keypair — transaction signing belongs to the [SigningBridge].
//   - Talk to a real browser: all window and query interaction goes through
//     [browser.Context].
//   - Treat expiry or policy escalation as errors. Both invalidate the
//     stored session and surface as "no session"; only configuration and
//     preset-resolution failures are errors a caller must handle.
//
// # Invariants
//
// The persisted session set (signer, grant, policy snapshot, connector
// marker) is valid only as a whole: any invalidation clears all four keys in
// one sweep, so a partially valid session is never observable.
package sessionkit
