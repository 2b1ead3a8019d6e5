package browser

import (
	"context"
	"net/url"
	"time"
)

// Window is a handle to an opened browsing context.
type Window interface {
	// Closed reports whether the window has been closed, by the user or
	// programmatically.
	Closed() bool
	Close()
}

// Context abstracts the pieces of a browsing environment the session
// lifecycle needs: opening authorization/disconnect windows and reading or
// rewriting the current page's query string. Keeping this behind an
// interface keeps the state machine free of any DOM coupling and testable
// without a browser.
type Context interface {
	// OpenWindow opens rawURL in a new browsing context. A nil Window
	// with a nil error means the environment refused the window (popup
	// blocked); callers must treat that as non-fatal.
	OpenWindow(rawURL string) (Window, error)

	// Query returns a copy of the current page's query parameters.
	Query() url.Values

	// ReplaceQuery rewrites the current page's query string without
	// adding a history entry.
	ReplaceQuery(values url.Values)
}

// DefaultClosePollInterval is how often WaitClosed re-checks the window.
const DefaultClosePollInterval = 500 * time.Millisecond

// WaitClosed blocks until w reports closed or ctx is cancelled. A nil window
// resolves immediately: if the environment never opened it there is nothing
// to wait for.
func WaitClosed(ctx context.Context, w Window, interval time.Duration) error {
	if w == nil {
		return nil
	}
	if interval <= 0 {
		interval = DefaultClosePollInterval
	}

	if w.Closed() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if w.Closed() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
