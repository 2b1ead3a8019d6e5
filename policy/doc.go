// Package policy implements the session policy model: normalization of
// caller-supplied policy requests, the canonical wire encoding consumed by
// the external signer, and subset validation between requested and granted
// sets.
//
// # Architecture boundaries
//
// This package owns pure policy algorithms only. It performs no I/O, holds
// no state, and never talks to storage, the keychain, or the signing bridge.
//
// # What this package must NOT do
//
//   - Import the root sessionkit package or any of its collaborators
//     (no upward imports).
//   - Normalize contract address casing: subset matching is exact-case on
//     purpose and callers rely on that strictness.
//   - Reorder keys inside message domain/types JSON: the serialized form is
//     the matching identity.
package policy
