package sessionkit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonlabs/sessionkit/browser"
	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/keychain"
	"github.com/halcyonlabs/sessionkit/policy"
	"github.com/halcyonlabs/sessionkit/storage"
	"github.com/halcyonlabs/sessionkit/token"
	"github.com/halcyonlabs/sessionkit/wallet"
)

// Controller is the session lifecycle state machine. It owns the persisted
// session state, drives the authorization hand-off, and materializes signing
// accounts through the external bridge.
//
// All methods are safe for concurrent use. The mutex also serves as the
// re-entrancy guard: a second Connect arriving while one is establishing a
// session waits and then observes the cached account instead of opening a
// duplicate authorization window.
type Controller struct {
	config   Config
	store    storage.Store
	browser  browser.Context
	channel  keychain.Channel
	bridge   SigningBridge
	wallets  *wallet.Registry
	verifier *token.Verifier
	presets  *presetResolver
	metrics  *Metrics
	audit    *internalaudit.Dispatcher

	mu        sync.Mutex
	account   Account
	username  string
	signer    *SessionSigner
	requested *policy.Policies
}

// Account returns the materialized signing account, or nil when no session
// is established.
func (c *Controller) Account() Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// Username returns the username of the established session, or "".
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Wallets exposes the external wallet adapter registry.
func (c *Controller) Wallets() *wallet.Registry {
	return c.wallets
}

// Close shuts down the audit dispatcher, draining buffered events.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped reports audit events dropped under backpressure.
func (c *Controller) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Controller) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.audit.Emit(ctx, event)
}

// connectID mints a correlation id for one authorization attempt.
func connectID() string {
	return uuid.NewString()
}
