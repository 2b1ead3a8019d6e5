package sessionkit

import (
	"errors"
	"strings"
	"time"

	"github.com/halcyonlabs/sessionkit/keychain"
	"github.com/halcyonlabs/sessionkit/policy"
)

// Config defines the session engine configuration.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Keychain KeychainConfig
	Chain    ChainConfig
	Session  SessionConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// Policies is the inline requested policy set. Exactly one of
	// Policies and Preset must be supplied.
	Policies *policy.Policies
	// Preset names a policy preset hosted by the authorization service.
	Preset string

	// SignupOptions restricts which signer kinds the authorization
	// service offers during signup ("webauthn", "password", ...).
	SignupOptions []string
}

/*
====================================
KEYCHAIN CONFIG
====================================
*/

// KeychainConfig locates the authorization service and tunes the
// cross-window handshake.
type KeychainConfig struct {
	// URL is the keychain origin, e.g. "https://keychain.example".
	URL string
	// RedirectURI is where the authorization window sends the user back.
	RedirectURI string
	// RedirectQueryName is the query parameter carrying the redirect
	// payload. Defaults to "startapp".
	RedirectQueryName string

	// PollInterval and HandshakeTimeout bound the wait for the keychain
	// frame's remote-method proxy.
	PollInterval     time.Duration
	HandshakeTimeout time.Duration

	// ConfirmDisconnect opens the keychain's disconnect page on
	// Disconnect and waits for the user to close it.
	ConfirmDisconnect bool
	// DisconnectRedirectURL is passed to the disconnect page when set.
	DisconnectRedirectURL string

	// GrantVerifyKeys enables signed-grant verification: kid → ed25519
	// public key. Empty means grants are accepted unverified.
	GrantVerifyKeys map[string][]byte
	// GrantIssuer, when set, is required as the iss claim of signed
	// grants.
	GrantIssuer string
}

/*
====================================
CHAIN CONFIG
====================================
*/

// ChainConfig identifies the target chain.
type ChainConfig struct {
	ID     string
	RPCURL string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig tunes session persistence.
type SessionConfig struct {
	// RedisPrefix namespaces keys when a Redis-backed store is used.
	RedisPrefix string
	// StoreTTL caps how long a Redis-backed store keeps session state.
	// Zero disables backend expiry; the lifecycle's own expiry check
	// still applies.
	StoreTTL time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metrics collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Keychain: KeychainConfig{
			RedirectQueryName: "startapp",
			PollInterval:      keychain.DefaultPollInterval,
			HandshakeTimeout:  keychain.DefaultHandshakeTimeout,
		},
		Session: SessionConfig{
			RedisPrefix: "sk",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks structural configuration. Policy/preset presence is
// checked separately in Build so embedders get the dedicated sentinel.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Keychain.URL) == "" {
		return errors.New("keychain URL required")
	}
	if strings.TrimSpace(c.Keychain.RedirectQueryName) == "" {
		return errors.New("redirect query name required")
	}
	if c.Keychain.PollInterval < 0 || c.Keychain.HandshakeTimeout < 0 {
		return errors.New("keychain poll interval and handshake timeout must not be negative")
	}
	if strings.TrimSpace(c.Chain.ID) == "" {
		return errors.New("chain id required")
	}
	if c.Policies != nil && c.Preset != "" {
		return errors.New("policies and preset are mutually exclusive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg

	if cfg.Policies != nil {
		cloned := policy.Clone(*cfg.Policies)
		out.Policies = &cloned
	}
	if cfg.SignupOptions != nil {
		out.SignupOptions = make([]string, len(cfg.SignupOptions))
		copy(out.SignupOptions, cfg.SignupOptions)
	}
	if cfg.Keychain.GrantVerifyKeys != nil {
		keys := make(map[string][]byte, len(cfg.Keychain.GrantVerifyKeys))
		for kid, key := range cfg.Keychain.GrantVerifyKeys {
			keys[kid] = cloneBytes(key)
		}
		out.Keychain.GrantVerifyKeys = keys
	}

	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
