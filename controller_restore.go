package sessionkit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/policy"
	"github.com/halcyonlabs/sessionkit/storage"
)

// restoreLocked attempts to materialize a signing account from persisted
// state and, when present, the redirect query payload. It returns (nil, nil)
// when no usable session exists; expiry and escalation are recovered by
// clearing storage, not by erroring. Callers hold c.mu.
//
// Precedence: the stored grant is the baseline; a redirect payload in the
// query string supersedes it when its expiry differs numerically. The query
// parameter is stripped after processing so a payload is consumed exactly
// once.
func (c *Controller) restoreLocked(ctx context.Context) (Account, error) {
	started := time.Now()

	grant := c.loadStoredGrantLocked(ctx)
	grant = c.consumeRedirectLocked(ctx, grant)

	if grant == nil || !c.signer.valid() {
		return nil, nil
	}

	if grant.Expired(time.Now()) {
		c.metricInc(MetricGrantExpired)
		c.emitAudit(ctx, AuditEvent{
			EventType:      internalaudit.EventGrantExpired,
			Address:        grant.Address,
			SessionKeyGUID: grant.SessionKeyGUID,
		})
		c.clearLocked(ctx)
		return nil, nil
	}

	granted, err := c.checkEscalationLocked(ctx, grant)
	if err != nil {
		return nil, err
	}
	if granted == nil {
		return nil, nil
	}

	exp, err := grant.ExpiresAtUnix()
	if err != nil {
		c.clearLocked(ctx)
		return nil, nil
	}

	account, err := c.bridge.Materialize(ctx, AccountParams{
		PrivateKey:      c.signer.PrivKey,
		Address:         grant.Address,
		OwnerGUID:       grant.OwnerGUID,
		ChainID:         c.config.Chain.ID,
		ExpiresAt:       exp,
		Policies:        policy.ToWirePolicies(*granted),
		GuardianKeyGUID: grant.GuardianKeyGUID,
		MetadataHash:    grant.MetadataHash,
		SessionKeyGUID:  grant.SessionKeyGUID,
	})
	if err != nil {
		return nil, fmt.Errorf("materialize signing account: %w", err)
	}

	c.account = account
	c.username = grant.Username

	if c.metrics.LatencyEnabled() {
		c.metrics.Observe(MetricRestoreLatency, time.Since(started))
	}

	return account, nil
}

// loadStoredGrantLocked reads the persisted signer and grant. A grant that
// fails to decode or misses required fields invalidates the whole stored
// set.
func (c *Controller) loadStoredGrantLocked(ctx context.Context) *SessionGrant {
	if data, ok, err := c.store.Get(ctx, storage.KeySigner); err == nil && ok {
		var signer SessionSigner
		if json.Unmarshal(data, &signer) == nil && signer.valid() {
			c.signer = &signer
		}
	}

	data, ok, err := c.store.Get(ctx, storage.KeySession)
	if err != nil || !ok {
		return nil
	}

	var grant SessionGrant
	if json.Unmarshal(data, &grant) != nil || !grant.complete() {
		c.clearLocked(ctx)
		return nil
	}

	grant.applyDefaults(c.signer.GUID())
	return &grant
}

// consumeRedirectLocked checks the browsing context's query string for a
// redirect payload. A successfully ingested grant supersedes the baseline
// when its expiry differs; either way the parameter is removed so a reload
// cannot replay it.
func (c *Controller) consumeRedirectLocked(ctx context.Context, baseline *SessionGrant) *SessionGrant {
	name := c.config.Keychain.RedirectQueryName

	query := c.browser.Query()
	encoded := query.Get(name)
	if encoded == "" {
		return baseline
	}

	ingested := c.ingestRedirectLocked(ctx, encoded)

	query.Del(name)
	c.browser.ReplaceQuery(query)

	if ingested == nil {
		return baseline
	}
	if baseline == nil {
		return ingested
	}

	baseExp, baseErr := baseline.ExpiresAtUnix()
	newExp, newErr := ingested.ExpiresAtUnix()
	if baseErr != nil || newErr != nil || baseExp != newExp {
		return ingested
	}
	return baseline
}

// checkEscalationLocked runs the subset guard against the stored policy
// snapshot. It returns the policy set to hand to the signing bridge, or nil
// when the session was invalidated. A client that changed its requested
// policies after the grant was issued must not keep using the old grant for
// the new permissions.
func (c *Controller) checkEscalationLocked(ctx context.Context, grant *SessionGrant) (*policy.Policies, error) {
	requested, err := c.requestedPoliciesLocked(ctx)
	if err != nil {
		return nil, err
	}

	data, ok, storeErr := c.store.Get(ctx, storage.KeyPolicies)
	if storeErr != nil || !ok {
		return requested, nil
	}

	var granted policy.Policies
	if json.Unmarshal(data, &granted) != nil {
		c.clearLocked(ctx)
		return nil, nil
	}

	if requested != nil && !policy.ValidateSubset(*requested, granted) {
		c.metricInc(MetricEscalationRejected)
		c.emitAudit(ctx, AuditEvent{
			EventType:      internalaudit.EventEscalationRejected,
			Address:        grant.Address,
			SessionKeyGUID: grant.SessionKeyGUID,
		})
		c.clearLocked(ctx)
		return nil, nil
	}

	return &granted, nil
}

// requestedPoliciesLocked returns the current requested policy set, resolving
// the configured preset on first use. Preset resolution failure is the one
// restore-path failure that surfaces as an error.
func (c *Controller) requestedPoliciesLocked(ctx context.Context) (*policy.Policies, error) {
	if c.requested != nil {
		cloned := policy.Clone(*c.requested)
		return &cloned, nil
	}
	if c.config.Preset == "" {
		return nil, nil
	}

	resolved, err := c.presets.Resolve(ctx, c.config.Preset, c.config.Chain.ID)
	if err != nil {
		c.metricInc(MetricPresetFailure)
		return nil, err
	}
	c.metricInc(MetricPresetResolved)

	c.requested = resolved
	cloned := policy.Clone(*resolved)
	return &cloned, nil
}

// clearLocked wipes persisted and in-memory session state as a unit.
func (c *Controller) clearLocked(ctx context.Context) {
	_ = storage.ClearSession(ctx, c.store)
	c.account = nil
	c.username = ""
	c.signer = nil
}
