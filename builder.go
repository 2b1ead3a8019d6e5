package sessionkit

import (
	"errors"
	"net/http"

	"github.com/halcyonlabs/sessionkit/browser"
	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/keychain"
	"github.com/halcyonlabs/sessionkit/policy"
	"github.com/halcyonlabs/sessionkit/storage"
	"github.com/halcyonlabs/sessionkit/token"
	"github.com/halcyonlabs/sessionkit/wallet"
)

// Builder assembles a [Controller]. Collaborators the embedder does not
// supply fall back to headless defaults; the signing bridge has no default
// and must be provided.
type Builder struct {
	config Config

	store    storage.Store
	browser  browser.Context
	channel  keychain.Channel
	bridge   SigningBridge
	adapters []wallet.Adapter

	auditSink  AuditSink
	httpClient *http.Client

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the session persistence backend. Defaults to an in-memory
// store.
func (b *Builder) WithStore(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithBrowser sets the browsing-context capability. Defaults to a headless
// context.
func (b *Builder) WithBrowser(ctx browser.Context) *Builder {
	b.browser = ctx
	return b
}

// WithKeychainChannel sets the cross-document RPC channel to the
// authorization service.
func (b *Builder) WithKeychainChannel(ch keychain.Channel) *Builder {
	b.channel = ch
	return b
}

// WithSigningBridge sets the external account materializer. Required.
func (b *Builder) WithSigningBridge(bridge SigningBridge) *Builder {
	b.bridge = bridge
	return b
}

// WithWallets registers external wallet adapters.
func (b *Builder) WithWallets(adapters ...wallet.Adapter) *Builder {
	b.adapters = append(b.adapters, adapters...)
	return b
}

// WithAuditSink sets the audit event sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithHTTPClient sets the client used for preset resolution. Defaults to
// http.DefaultClient.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and constructs the [Controller]. A
// missing policy set and preset is the fatal configuration error: it fails
// here, synchronously, before any I/O.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if cfg.Policies == nil && cfg.Preset == "" {
		return nil, ErrPoliciesRequired
	}
	if b.bridge == nil {
		return nil, ErrSigningBridgeRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	browserCtx := b.browser
	if browserCtx == nil {
		browserCtx = browser.NewHeadless()
	}

	var verifier *token.Verifier
	if len(cfg.Keychain.GrantVerifyKeys) > 0 {
		v, err := token.NewVerifier(token.Config{
			Method:     token.MethodEd25519,
			VerifyKeys: cfg.Keychain.GrantVerifyKeys,
			Issuer:     cfg.Keychain.GrantIssuer,
		})
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Controller{
		config:   cfg,
		store:    store,
		browser:  browserCtx,
		channel:  b.channel,
		bridge:   b.bridge,
		wallets:  wallet.NewRegistry(b.adapters...),
		verifier: verifier,
		presets:  newPresetResolver(httpClient, cfg.Keychain.URL),
		metrics:  NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	if cfg.Policies != nil {
		requested := policy.Normalize(*cfg.Policies)
		c.requested = &requested
	}

	b.built = true

	return c, nil
}
