// Package wallet bridges external wallet providers (MetaMask, Argent,
// Braavos, Phantom, Rabby) behind one capability interface and a registry
// that resolves an adapter by explicit type or by connected-account address.
//
// Every operation funnels into the uniform [Result] shape. Adapter failures
// — including panics — are converted, never propagated, so a single
// misbehaving provider cannot abort a multi-wallet flow.
//
// Address comparison here is checksum-normalized, which is the opposite of
// the policy subset check's exact-match rule; the two serve different trust
// boundaries and must not be unified.
package wallet
