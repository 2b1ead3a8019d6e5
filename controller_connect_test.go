package sessionkit

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/halcyonlabs/sessionkit/policy"
	"github.com/halcyonlabs/sessionkit/storage"
	"github.com/halcyonlabs/sessionkit/wallet"
)

func signedGrantPayload(t *testing.T, priv ed25519.PrivateKey, kid string) func(string) (json.RawMessage, error) {
	t.Helper()

	return func(guid string) (json.RawMessage, error) {
		claims := jwt.MapClaims{
			"username":       "alice",
			"address":        "0xABCDEF",
			"ownerGuid":      "0xowner",
			"sessionKeyGuid": guid,
			"exp":            time.Now().Add(time.Hour).Unix(),
			"iat":            time.Now().Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		token.Header["kid"] = kid

		signed, err := token.SignedString(priv)
		if err != nil {
			t.Fatalf("sign grant assertion: %v", err)
		}
		return json.Marshal(signed)
	}
}

func TestConnectVerifiedGrantMarksSnapshot(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keychain key: %v", err)
	}

	f, cleanup := newFixture(t, func(cfg *Config) {
		cfg.Keychain.GrantVerifyKeys = map[string][]byte{"k1": pub}
	})
	defer cleanup()

	f.channel.payload = signedGrantPayload(t, priv, "k1")

	account, err := f.controller.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if account == nil {
		t.Fatal("expected an account")
	}

	data, ok, err := f.store.Get(context.Background(), storage.KeyPolicies)
	if err != nil || !ok {
		t.Fatalf("expected a stored policy snapshot: ok=%v err=%v", ok, err)
	}
	var snapshot policy.Policies
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !snapshot.Verified {
		t.Fatal("a signed grant must mark the policy snapshot verified")
	}
}

func TestConnectRejectsGrantSignedWithWrongKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keychain key: %v", err)
	}
	_, wrongPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate rogue key: %v", err)
	}

	f, cleanup := newFixture(t, func(cfg *Config) {
		cfg.Keychain.GrantVerifyKeys = map[string][]byte{"k1": pub}
	})
	defer cleanup()

	f.channel.payload = signedGrantPayload(t, wrongPriv, "k1")

	if _, err := f.controller.Connect(context.Background()); err == nil {
		t.Fatal("expected a grant signed with the wrong key to fail")
	}
}

type stubAdapter struct {
	kind      wallet.Type
	available bool
	accounts  []string
}

func (a *stubAdapter) Type() wallet.Type { return a.kind }
func (a *stubAdapter) Available() bool   { return a.available }

func (a *stubAdapter) Connect(_ context.Context, address string) wallet.Result {
	if address == "" && len(a.accounts) > 0 {
		address = a.accounts[0]
	}
	return wallet.Result{Success: true, Account: address}
}

func (a *stubAdapter) SignMessage(context.Context, []byte) wallet.Result {
	return wallet.Result{Success: true}
}

func (a *stubAdapter) SignTypedData(context.Context, json.RawMessage) wallet.Result {
	return wallet.Result{Success: true}
}

func (a *stubAdapter) SendTransaction(context.Context, json.RawMessage) wallet.Result {
	return wallet.Result{Success: true}
}

func (a *stubAdapter) GetBalance(context.Context, string) (string, error) { return "0", nil }

func (a *stubAdapter) SwitchChain(context.Context, string) error {
	return wallet.ErrChainSwitchUnsupported
}

func (a *stubAdapter) ConnectedAccounts(context.Context) ([]string, error) {
	return a.accounts, nil
}

func TestConnectExternalRecordsConnector(t *testing.T) {
	cfg := testConfig()

	controller, err := New().
		WithConfig(cfg).
		WithSigningBridge(&fakeBridge{}).
		WithWallets(&stubAdapter{kind: wallet.TypeMetaMask, available: true, accounts: []string{"0xFEED"}}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer controller.Close()

	result := controller.ConnectExternal(context.Background(), wallet.TypeMetaMask, "")
	if !result.Success {
		t.Fatalf("expected a successful wallet connect: %+v", result)
	}
	if result.Wallet != wallet.TypeMetaMask {
		t.Fatalf("expected wallet type to be stamped, got %q", result.Wallet)
	}

	connector, err := controller.LastConnector(context.Background())
	if err != nil {
		t.Fatalf("LastConnector failed: %v", err)
	}
	if connector != string(wallet.TypeMetaMask) {
		t.Fatalf("expected connector %q, got %q", wallet.TypeMetaMask, connector)
	}
}

func TestConnectExternalUnknownWallet(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	result := f.controller.ConnectExternal(context.Background(), wallet.TypePhantom, "")
	if result.Success {
		t.Fatal("expected failure for an unregistered wallet")
	}
	if result.Error == "" {
		t.Fatal("expected a populated error message")
	}
}

func TestConnectRecordsKeychainConnector(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	if _, err := f.controller.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	connector, err := f.controller.LastConnector(context.Background())
	if err != nil {
		t.Fatalf("LastConnector failed: %v", err)
	}
	if connector != connectorKeychain {
		t.Fatalf("expected %q, got %q", connectorKeychain, connector)
	}
}
