package sessionkit

import (
	"strings"
	"testing"
)

func TestNewSessionSignerGeneratesDistinctKeys(t *testing.T) {
	a, err := newSessionSigner()
	if err != nil {
		t.Fatalf("newSessionSigner failed: %v", err)
	}
	b, err := newSessionSigner()
	if err != nil {
		t.Fatalf("newSessionSigner failed: %v", err)
	}

	if !a.valid() || !b.valid() {
		t.Fatal("fresh signers must be valid")
	}
	if a.PubKey == b.PubKey {
		t.Fatal("two fresh signers share a public key")
	}
	if !strings.HasPrefix(a.PubKey, "0x") || !strings.HasPrefix(a.PrivKey, "0x") {
		t.Fatal("keys must be 0x-prefixed hex")
	}
}

func TestSignerGUIDIsCaseInsensitive(t *testing.T) {
	s, err := newSessionSigner()
	if err != nil {
		t.Fatalf("newSessionSigner failed: %v", err)
	}

	upper := &SessionSigner{PrivKey: s.PrivKey, PubKey: strings.ToUpper(s.PubKey)}
	// ToUpper also raises the 0x prefix; GUID must still agree.
	if s.GUID() != upper.GUID() {
		t.Fatal("guid derivation must not depend on key casing")
	}
}

func TestSignerGUIDEmptyForNilOrIncomplete(t *testing.T) {
	var s *SessionSigner
	if s.GUID() != "" {
		t.Fatal("nil signer must derive an empty guid")
	}
	if (&SessionSigner{}).GUID() != "" {
		t.Fatal("keyless signer must derive an empty guid")
	}
	if (&SessionSigner{PrivKey: "0x1"}).valid() {
		t.Fatal("signer without a public key must be invalid")
	}
}
