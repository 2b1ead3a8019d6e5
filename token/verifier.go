package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the algorithm grant assertions are verified with.
type SigningMethod string

const (
	// MethodEd25519 verifies EdDSA-signed assertions (default for the
	// hosted keychain).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 verifies HMAC-signed assertions (self-hosted
	// keychains sharing a secret with the holder).
	MethodHS256 SigningMethod = "hs256"
)

var (
	// ErrTokenInvalid is returned for any assertion that fails parsing,
	// signature, or claim validation.
	ErrTokenInvalid = errors.New("invalid grant assertion")
	// ErrUnknownKeyID is returned when the assertion names a kid that is
	// not in the verify-key set.
	ErrUnknownKeyID = errors.New("unknown grant signing key id")
)

// Config configures a [Verifier].
type Config struct {
	Method SigningMethod

	// PublicKey is the single ed25519 verify key; VerifyKeys maps kid
	// header values to keys when the keychain rotates.
	PublicKey  []byte
	VerifyKeys map[string][]byte

	// Secret is the shared HMAC secret for MethodHS256.
	Secret []byte

	Issuer string
	Leeway time.Duration
}

// GrantClaims are the session grant fields the keychain asserts. Expiry
// rides in the registered exp claim.
type GrantClaims struct {
	Username        string `json:"username"`
	Address         string `json:"address"`
	OwnerGUID       string `json:"ownerGuid"`
	SessionKeyGUID  string `json:"sessionKeyGuid,omitempty"`
	GuardianKeyGUID string `json:"guardianKeyGuid,omitempty"`
	MetadataHash    string `json:"metadataHash,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates keychain-signed grant assertions. A grant delivered
// through a verified assertion is the only path that marks a stored policy
// snapshot as service-confirmed.
type Verifier struct {
	config Config
}

// NewVerifier validates cfg and returns a Verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.Method {
	case "", MethodEd25519:
		cfg.Method = MethodEd25519
		if len(cfg.PublicKey) == 0 && len(cfg.VerifyKeys) == 0 {
			return nil, errors.New("ed25519 requires a public key or verify key set")
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Verifier{config: cfg}, nil
}

// Verify parses and validates assertion and returns its grant claims.
// Expired assertions fail here; the lifecycle's own expiry sweep handles
// grants that age out later.
func (v *Verifier) Verify(assertion string) (*GrantClaims, error) {
	claims := &GrantClaims{}

	options := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.config.Leeway),
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	switch v.config.Method {
	case MethodHS256:
		options = append(options, jwt.WithValidMethods([]string{"HS256"}))
	default:
		options = append(options, jwt.WithValidMethods([]string{"EdDSA"}))
	}

	parsed, err := jwt.ParseWithClaims(assertion, claims, v.keyFunc, options...)
	if err != nil {
		if errors.Is(err, ErrUnknownKeyID) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Username == "" || claims.Address == "" || claims.OwnerGUID == "" {
		return nil, fmt.Errorf("%w: missing grant fields", ErrTokenInvalid)
	}

	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if v.config.Method == MethodHS256 {
		return v.config.Secret, nil
	}

	if kid, ok := t.Header["kid"].(string); ok && kid != "" {
		key, found := v.config.VerifyKeys[kid]
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
		}
		return parseEdPublicKey(key)
	}

	if len(v.config.PublicKey) == 0 {
		return nil, fmt.Errorf("%w: assertion has no kid and no default key is set", ErrUnknownKeyID)
	}
	return parseEdPublicKey(v.config.PublicKey)
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.New("ed25519 public key must be 32 bytes")
	}
	return ed25519.PublicKey(key), nil
}
