package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Type identifies one supported external wallet.
type Type string

const (
	// TypeMetaMask is the MetaMask injected provider.
	TypeMetaMask Type = "metamask"
	// TypeArgent is the Argent X provider.
	TypeArgent Type = "argent"
	// TypeBraavos is the Braavos provider.
	TypeBraavos Type = "braavos"
	// TypePhantom is the Phantom provider.
	TypePhantom Type = "phantom"
	// TypeRabby is the Rabby provider.
	TypeRabby Type = "rabby"
)

// ErrChainSwitchUnsupported is returned by adapters whose provider has no
// chain-switch or add-chain capability.
var ErrChainSwitchUnsupported = errors.New("chain switching is not implemented for this wallet")

// ErrAdapterNotFound is returned by the registry when no adapter matches.
var ErrAdapterNotFound = errors.New("no wallet adapter matches")

// Result is the uniform outcome of every wallet operation. Adapter failures
// of any kind — provider errors, panics, unavailable extensions — land here
// as Success=false with the wallet identified, never as an escaped error, so
// one misbehaving adapter cannot abort a multi-wallet operation.
type Result struct {
	Success bool   `json:"success"`
	Wallet  Type   `json:"wallet"`
	Account string `json:"account,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Adapter is the capability set every supported wallet exposes. Adapters
// wrap the wallet's own provider transport; they must be safe to probe via
// Available even when the extension is absent.
type Adapter interface {
	Type() Type
	Available() bool

	Connect(ctx context.Context, address string) Result
	SignMessage(ctx context.Context, message []byte) Result
	SignTypedData(ctx context.Context, typedData json.RawMessage) Result
	SendTransaction(ctx context.Context, tx json.RawMessage) Result

	GetBalance(ctx context.Context, address string) (string, error)
	SwitchChain(ctx context.Context, chainID string) error

	// ConnectedAccounts lists addresses the wallet currently exposes.
	ConnectedAccounts(ctx context.Context) ([]string, error)
}

// NormalizeAddress lowers an address to its checksum-insensitive form for
// adapter lookup. Unlike the policy subset check, adapter resolution is
// deliberately case-insensitive: the same account arrives differently
// checksummed from different wallets.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr
	}
	return strings.ToLower(addr)
}
