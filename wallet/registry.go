package wallet

import (
	"context"
	"fmt"
)

// Registry resolves wallet adapters by explicit type or by connected-account
// address and shields callers from adapter misbehavior.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry over the given adapters. Order is the
// scan order for address resolution.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Adapters returns the registered adapters in scan order.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// ByType returns the adapter registered for t.
func (r *Registry) ByType(t Type) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Type() == t {
			return a, true
		}
	}
	return nil, false
}

// ByAddress scans available adapters' connected-account lists for address.
// Comparison is checksum-normalized. Adapter errors during the scan are
// skipped, not propagated: one broken wallet must not hide the others.
func (r *Registry) ByAddress(ctx context.Context, address string) (Adapter, bool) {
	want := NormalizeAddress(address)

	for _, a := range r.adapters {
		if !a.Available() {
			continue
		}
		accounts, err := r.connectedAccounts(ctx, a)
		if err != nil {
			continue
		}
		for _, acct := range accounts {
			if NormalizeAddress(acct) == want {
				return a, true
			}
		}
	}
	return nil, false
}

// Connect resolves an adapter by explicit type when given, otherwise by
// address scan, and connects. Resolution misses and adapter failures come
// back as a failed [Result].
func (r *Registry) Connect(ctx context.Context, t Type, address string) Result {
	var (
		adapter Adapter
		ok      bool
	)
	if t != "" {
		adapter, ok = r.ByType(t)
	} else {
		adapter, ok = r.ByAddress(ctx, address)
	}
	if !ok {
		return Result{Success: false, Wallet: t, Error: ErrAdapterNotFound.Error()}
	}
	if !adapter.Available() {
		return Result{Success: false, Wallet: adapter.Type(), Error: "wallet unavailable"}
	}

	return guard(adapter.Type(), func() Result {
		return adapter.Connect(ctx, address)
	})
}

// SignMessage signs message with the adapter for t.
func (r *Registry) SignMessage(ctx context.Context, t Type, message []byte) Result {
	adapter, ok := r.ByType(t)
	if !ok {
		return Result{Success: false, Wallet: t, Error: ErrAdapterNotFound.Error()}
	}
	return guard(t, func() Result {
		return adapter.SignMessage(ctx, message)
	})
}

// connectedAccounts recovers from adapter panics during the address scan.
func (r *Registry) connectedAccounts(ctx context.Context, a Adapter) (accounts []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			accounts, err = nil, fmt.Errorf("wallet %s panicked: %v", a.Type(), rec)
		}
	}()
	return a.ConnectedAccounts(ctx)
}

// guard converts a panicking adapter call into a failed Result.
func guard(t Type, fn func() Result) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Success: false, Wallet: t, Error: fmt.Sprintf("wallet adapter panicked: %v", rec)}
		}
	}()

	res = fn()
	res.Wallet = t
	return res
}
