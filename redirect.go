package sessionkit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/storage"
)

// IngestRedirect decodes a redirect payload (base64 of the JSON-encoded
// grant, padding optional), persists it as the session grant, and returns
// it.
//
// Malformed payloads are never an error the caller sees: they are audited
// and swallowed, returning nil, because a garbled redirect must degrade to
// "no session" rather than crash the landing page.
func (c *Controller) IngestRedirect(ctx context.Context, encoded string) *SessionGrant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ingestRedirectLocked(ctx, encoded)
}

func (c *Controller) ingestRedirectLocked(ctx context.Context, encoded string) *SessionGrant {
	grant, reason := decodeRedirectGrant(encoded)
	if grant == nil {
		c.metricInc(MetricRedirectMalformed)
		c.emitAudit(ctx, AuditEvent{
			EventType: internalaudit.EventRedirectMalformed,
			Error:     reason,
		})
		return nil
	}

	grant.applyDefaults(c.signer.GUID())

	if err := c.persistGrantLocked(ctx, grant); err != nil {
		c.emitAudit(ctx, AuditEvent{
			EventType: internalaudit.EventRedirectMalformed,
			Address:   grant.Address,
			Error:     err.Error(),
		})
		return nil
	}

	c.metricInc(MetricRedirectIngested)
	c.emitAudit(ctx, AuditEvent{
		EventType:      internalaudit.EventRedirectIngested,
		Address:        grant.Address,
		SessionKeyGUID: grant.SessionKeyGUID,
		Success:        true,
	})

	return grant
}

// decodeRedirectGrant does the pure decode: base64 (padding restored) then
// JSON, then the required-field check. It reports a reason instead of an
// error because no failure here propagates.
func decodeRedirectGrant(encoded string) (*SessionGrant, string) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, "empty payload"
	}

	// The authorization service strips base64 padding from redirect
	// URLs; restore it before decoding.
	if m := len(encoded) % 4; m != 0 {
		encoded += strings.Repeat("=", 4-m)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "base64 decode: " + err.Error()
	}

	var grant SessionGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, "json decode: " + err.Error()
	}

	if !grant.complete() {
		return nil, "incomplete grant payload"
	}

	return &grant, ""
}

func (c *Controller) persistGrantLocked(ctx context.Context, grant *SessionGrant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, storage.KeySession, data)
}
