package sessionkit

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SessionSigner is the ephemeral local keypair a session delegates to. It is
// generated fresh whenever no usable signer exists and discarded on
// disconnect or invalidation; it never leaves the holder.
type SessionSigner struct {
	PrivKey string `json:"privKey"`
	PubKey  string `json:"pubKey"`
}

// newSessionSigner generates a fresh ed25519 keypair, hex-encoded with a
// 0x prefix.
func newSessionSigner() (*SessionSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &SessionSigner{
		PrivKey: "0x" + hex.EncodeToString(priv.Seed()),
		PubKey:  "0x" + hex.EncodeToString(pub),
	}, nil
}

// GUID derives the session key identifier the grant references. The
// derivation is case-insensitive over the public key encoding so the same
// key always yields the same guid.
func (s *SessionSigner) GUID() string {
	if s == nil || s.PubKey == "" {
		return ""
	}
	normalized := strings.TrimPrefix(strings.ToLower(s.PubKey), "0x")
	sum := sha256.Sum256([]byte(normalized))
	return "0x" + hex.EncodeToString(sum[:])
}

// valid reports whether the signer carries both key halves.
func (s *SessionSigner) valid() bool {
	return s != nil && s.PrivKey != "" && s.PubKey != ""
}
