package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	return pub, priv
}

func signGrant(t *testing.T, priv ed25519.PrivateKey, kid string, claims *GrantClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(priv)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func validClaims() *GrantClaims {
	return &GrantClaims{
		Username:  "alice",
		Address:   "0x1",
		OwnerGUID: "0xowner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyEd25519(t *testing.T) {
	pub, priv := newKeyPair(t)

	v, err := NewVerifier(Config{PublicKey: pub})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims, err := v.Verify(signGrant(t, priv, "", validClaims()))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Username != "alice" || claims.Address != "0x1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	pub, _ := newKeyPair(t)
	_, otherPriv := newKeyPair(t)

	v, err := NewVerifier(Config{PublicKey: pub})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.Verify(signGrant(t, otherPriv, "", validClaims())); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	pub, priv := newKeyPair(t)

	v, err := NewVerifier(Config{PublicKey: pub})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	if _, err := v.Verify(signGrant(t, priv, "", claims)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyKidLookup(t *testing.T) {
	pub, priv := newKeyPair(t)

	v, err := NewVerifier(Config{VerifyKeys: map[string][]byte{"2024-01": pub}})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.Verify(signGrant(t, priv, "2024-01", validClaims())); err != nil {
		t.Fatalf("kid verify failed: %v", err)
	}

	if _, err := v.Verify(signGrant(t, priv, "2099-01", validClaims())); !errors.Is(err, ErrUnknownKeyID) {
		t.Fatalf("expected ErrUnknownKeyID, got %v", err)
	}
}

func TestVerifyRejectsMissingGrantFields(t *testing.T) {
	pub, priv := newKeyPair(t)

	v, err := NewVerifier(Config{PublicKey: pub})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims := validClaims()
	claims.OwnerGUID = ""

	if _, err := v.Verify(signGrant(t, priv, "", claims)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewVerifierConfigErrors(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Fatal("ed25519 with no keys must fail")
	}
	if _, err := NewVerifier(Config{Method: MethodHS256}); err == nil {
		t.Fatal("hs256 with no secret must fail")
	}
	if _, err := NewVerifier(Config{Method: "rsa"}); err == nil {
		t.Fatal("unsupported method must fail")
	}
}
