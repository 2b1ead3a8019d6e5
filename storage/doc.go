// Package storage defines the injectable key/value persistence contract for
// session state and ships two backends: an in-process [MemoryStore] and a
// Redis-backed [RedisStore].
//
// Session state lives under exactly four logical keys (signer, grant, policy
// snapshot, connector marker). The lifecycle component always writes or
// clears them as a unit; [ClearSession] is the only sanctioned way to tear a
// session down, so partially valid state is never observable.
//
// # What this package must NOT do
//
//   - Interpret the JSON it stores. Encoding and validation belong to the
//     root package.
//   - Decide expiry or policy validity.
package storage
