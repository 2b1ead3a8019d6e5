package sessionkit

import (
	"context"
	"io"
	"strconv"
	"time"

	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/policy"
)

// SessionGrant is the authorization service's confirmed record of a session
// and the persisted origin of truth for it. ExpiresAt is unix seconds kept
// as a string, exactly as the service emits it.
type SessionGrant struct {
	Username        string `json:"username"`
	Address         string `json:"address"`
	OwnerGUID       string `json:"ownerGuid"`
	ExpiresAt       string `json:"expiresAt"`
	GuardianKeyGUID string `json:"guardianKeyGuid"`
	MetadataHash    string `json:"metadataHash"`
	SessionKeyGUID  string `json:"sessionKeyGuid"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// DefaultFieldValue fills grant fields the service may omit.
const DefaultFieldValue = "0x0"

// complete reports whether the fields a grant cannot function without are
// present. Everything else is defaulted, never rejected.
func (g *SessionGrant) complete() bool {
	return g != nil &&
		g.Username != "" &&
		g.Address != "" &&
		g.OwnerGUID != "" &&
		g.ExpiresAt != ""
}

// applyDefaults fills optional fields; sessionKeyGUID falls back to the
// supplied current signer GUID.
func (g *SessionGrant) applyDefaults(signerGUID string) {
	if g.GuardianKeyGUID == "" {
		g.GuardianKeyGUID = DefaultFieldValue
	}
	if g.MetadataHash == "" {
		g.MetadataHash = DefaultFieldValue
	}
	if g.SessionKeyGUID == "" {
		g.SessionKeyGUID = signerGUID
	}
}

// ExpiresAtUnix parses the grant expiry into unix seconds.
func (g *SessionGrant) ExpiresAtUnix() (int64, error) {
	return strconv.ParseInt(g.ExpiresAt, 10, 64)
}

// Expired reports whether the grant is unusable at now. A grant whose
// expiry cannot be parsed is expired: an unreadable deadline must never
// extend a session.
func (g *SessionGrant) Expired(now time.Time) bool {
	exp, err := g.ExpiresAtUnix()
	if err != nil {
		return true
	}
	return !now.Before(time.Unix(exp, 0))
}

// AccountParams is everything the external signing bridge needs to
// materialize a usable signing account. Policies is the canonical wire
// encoding; its order feeds the bridge's commitment computation.
type AccountParams struct {
	PrivateKey      string
	Address         string
	OwnerGUID       string
	ChainID         string
	ExpiresAt       int64
	Policies        []policy.WirePolicy
	GuardianKeyGUID string
	MetadataHash    string
	SessionKeyGUID  string
}

// Account is a materialized signing account returned by the bridge.
type Account interface {
	Address() string
	Expiry() time.Time
}

// SigningBridge constructs signing accounts from session credentials. The
// concrete implementation is an external component (typically a WASM signer
// binding); sessionkit only hands it canonically ordered data.
type SigningBridge interface {
	Materialize(ctx context.Context, params AccountParams) (Account, error)
}

// AuditEvent is a structured audit record emitted by the session lifecycle.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the lifecycle's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
