package sessionkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
	"github.com/halcyonlabs/sessionkit/keychain"
	"github.com/halcyonlabs/sessionkit/policy"
	"github.com/halcyonlabs/sessionkit/storage"
	"github.com/halcyonlabs/sessionkit/token"
	"github.com/halcyonlabs/sessionkit/wallet"
)

// connectorKeychain is the lastUsedConnector marker value for sessions
// established through the keychain flow, as opposed to an external wallet
// type.
const connectorKeychain = "keychain"

// Connect returns the session's signing account, establishing a session if
// none exists. An account already in memory is returned as is; a session
// derivable from storage or the redirect query is restored; otherwise
// Connect runs the interactive authorization flow: it opens the keychain's
// session page and blocks until the grant subscription resolves or ctx is
// done.
//
// Concurrent callers serialize on the controller; the second caller observes
// the account the first one established instead of opening a duplicate
// authorization window.
func (c *Controller) Connect(ctx context.Context) (Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil {
		return c.account, nil
	}

	account, err := c.restoreLocked(ctx)
	if err != nil {
		return nil, err
	}
	if account != nil {
		c.metricInc(MetricConnectSuccess)
		return account, nil
	}

	return c.connectInteractiveLocked(ctx)
}

// Probe returns the session's signing account only if one is already
// derivable from storage or the redirect query. It never opens an
// authorization window; an absent session is (nil, nil), not an error.
func (c *Controller) Probe(ctx context.Context) (Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil {
		c.metricInc(MetricProbeHit)
		return c.account, nil
	}

	account, err := c.restoreLocked(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil {
		c.metricInc(MetricProbeMiss)
		return nil, nil
	}

	c.metricInc(MetricProbeHit)
	return account, nil
}

func (c *Controller) connectInteractiveLocked(ctx context.Context) (Account, error) {
	attemptID := connectID()

	account, err := c.runAuthorizationLocked(ctx, attemptID)
	if err != nil {
		c.metricInc(MetricConnectFailure)
		c.emitAudit(ctx, AuditEvent{
			EventType: internalaudit.EventConnect,
			ConnectID: attemptID,
			Error:     err.Error(),
		})
		return nil, err
	}

	c.metricInc(MetricConnectSuccess)
	c.emitAudit(ctx, AuditEvent{
		EventType:      internalaudit.EventConnect,
		ConnectID:      attemptID,
		Address:        account.Address(),
		SessionKeyGUID: c.signer.GUID(),
		ChainID:        c.config.Chain.ID,
		Success:        true,
	})

	return account, nil
}

func (c *Controller) runAuthorizationLocked(ctx context.Context, attemptID string) (Account, error) {
	if c.channel == nil {
		return nil, fmt.Errorf("%w: no keychain channel configured", ErrAuthorizationFailed)
	}

	requested, err := c.requestedPoliciesLocked(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(requested)
	if err != nil {
		return nil, fmt.Errorf("encode policy snapshot: %w", err)
	}
	if err := c.store.Set(ctx, storage.KeyPolicies, snapshot); err != nil {
		return nil, fmt.Errorf("persist policy snapshot: %w", err)
	}
	if err := c.setConnectorLocked(ctx, connectorKeychain); err != nil {
		return nil, err
	}

	signer, err := newSessionSigner()
	if err != nil {
		return nil, fmt.Errorf("generate session signer: %w", err)
	}
	signerData, err := json.Marshal(signer)
	if err != nil {
		return nil, fmt.Errorf("encode session signer: %w", err)
	}
	if err := c.store.Set(ctx, storage.KeySigner, signerData); err != nil {
		return nil, fmt.Errorf("persist session signer: %w", err)
	}
	c.signer = signer

	authURL, err := c.authorizationURL(signer.PubKey, requested, attemptID)
	if err != nil {
		return nil, fmt.Errorf("build authorization url: %w", err)
	}

	window, err := c.browser.OpenWindow(authURL)
	if err != nil {
		return nil, fmt.Errorf("open authorization window: %w", err)
	}
	if window == nil {
		return nil, ErrWindowBlocked
	}
	defer window.Close()

	grant, verified, err := c.awaitGrantLocked(ctx)
	if err != nil {
		return nil, err
	}

	grant.applyDefaults(signer.GUID())
	if !grant.complete() {
		return nil, fmt.Errorf("%w: incomplete grant from keychain", ErrAuthorizationFailed)
	}
	if err := c.persistGrantLocked(ctx, grant); err != nil {
		return nil, fmt.Errorf("persist grant: %w", err)
	}
	if verified {
		if err := c.markSnapshotVerifiedLocked(ctx); err != nil {
			return nil, err
		}
	}

	account, err := c.restoreLocked(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: grant did not yield a usable session", ErrAuthorizationFailed)
	}

	return account, nil
}

// awaitGrantLocked subscribes on the keychain channel for the grant keyed by
// the session signer's GUID. The payload is either a plain JSON grant or,
// when the keychain signs its grants, a compact JWS assertion; the verified
// flag reports which path delivered it.
func (c *Controller) awaitGrantLocked(ctx context.Context) (*SessionGrant, bool, error) {
	err := keychain.AwaitReady(ctx, c.channel, c.config.Keychain.PollInterval, c.config.Keychain.HandshakeTimeout)
	if err != nil {
		if errors.Is(err, keychain.ErrHandshakeTimeout) {
			c.metricInc(MetricKeychainTimeout)
		}
		return nil, false, err
	}

	raw, err := c.channel.Call(ctx, keychain.MethodSubscribeGrant, c.signer.GUID())
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}

	if assertion, ok := compactAssertion(raw); ok && c.verifier != nil {
		claims, err := c.verifier.Verify(assertion)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
		}
		return grantFromClaims(claims), true, nil
	}

	var grant SessionGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, false, fmt.Errorf("%w: undecodable grant payload: %v", ErrAuthorizationFailed, err)
	}
	return &grant, false, nil
}

// compactAssertion reports whether raw is a JSON string holding a compact
// JWS (three dot-separated segments).
func compactAssertion(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	if strings.Count(s, ".") != 2 {
		return "", false
	}
	return s, true
}

func grantFromClaims(claims *token.GrantClaims) *SessionGrant {
	grant := &SessionGrant{
		Username:        claims.Username,
		Address:         claims.Address,
		OwnerGUID:       claims.OwnerGUID,
		SessionKeyGUID:  claims.SessionKeyGUID,
		GuardianKeyGUID: claims.GuardianKeyGUID,
		MetadataHash:    claims.MetadataHash,
		TransactionHash: claims.TransactionHash,
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = strconv.FormatInt(claims.ExpiresAt.Unix(), 10)
	}
	return grant
}

// markSnapshotVerifiedLocked flips the stored policy snapshot's Verified
// flag after a signed grant confirmed the session.
func (c *Controller) markSnapshotVerifiedLocked(ctx context.Context) error {
	data, ok, err := c.store.Get(ctx, storage.KeyPolicies)
	if err != nil || !ok {
		return nil
	}

	var snapshot policy.Policies
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}
	snapshot.Verified = true

	updated, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	return c.store.Set(ctx, storage.KeyPolicies, updated)
}

// ConnectExternal connects through a registered external wallet adapter and
// records it as the last used connector. Adapter failures come back inside
// the result, never as a panic or error.
func (c *Controller) ConnectExternal(ctx context.Context, walletType wallet.Type, address string) wallet.Result {
	result := c.wallets.Connect(ctx, walletType, address)

	if result.Success {
		c.metricInc(MetricWalletConnectSuccess)
		c.mu.Lock()
		_ = c.setConnectorLocked(ctx, string(result.Wallet))
		c.mu.Unlock()
	} else {
		c.metricInc(MetricWalletConnectFailure)
	}

	c.emitAudit(ctx, AuditEvent{
		EventType: internalaudit.EventWalletConnect,
		Address:   result.Account,
		Success:   result.Success,
		Error:     result.Error,
	})

	return result
}

// LastConnector reports the marker of the most recent connect path: the
// keychain flow or an external wallet type. Empty when no session was ever
// established.
func (c *Controller) LastConnector(ctx context.Context) (string, error) {
	data, ok, err := c.store.Get(ctx, storage.KeyConnector)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	var connector string
	if err := json.Unmarshal(data, &connector); err != nil {
		return "", err
	}
	return connector, nil
}

func (c *Controller) setConnectorLocked(ctx context.Context, connector string) error {
	data, err := json.Marshal(connector)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, storage.KeyConnector, data); err != nil {
		return fmt.Errorf("persist connector marker: %w", err)
	}
	return nil
}
