package sessionkit

import (
	"context"

	"github.com/halcyonlabs/sessionkit/browser"
	internalaudit "github.com/halcyonlabs/sessionkit/internal/audit"
)

// Disconnect tears the session down: all four storage keys are cleared as a
// unit and the in-memory account, username and signer are reset. When
// disconnect confirmation is configured, the keychain's disconnect page is
// opened and Disconnect blocks until the user closes it; a window the
// environment refused to open resolves immediately.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	c.clearLocked(ctx)
	c.mu.Unlock()

	c.metricInc(MetricDisconnect)
	c.emitAudit(ctx, AuditEvent{
		EventType: internalaudit.EventDisconnect,
		Success:   true,
	})

	if !c.config.Keychain.ConfirmDisconnect {
		return nil
	}

	window, err := c.browser.OpenWindow(c.disconnectURL())
	if err != nil || window == nil {
		return nil
	}

	return browser.WaitClosed(ctx, window, browser.DefaultClosePollInterval)
}
