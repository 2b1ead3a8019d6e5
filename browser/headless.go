package browser

import (
	"net/url"
	"sync"
)

// HeadlessWindow is the [Window] returned by [Headless]. Tests and headless
// holders close it explicitly.
type HeadlessWindow struct {
	mu     sync.Mutex
	closed bool
}

// Closed reports whether Close has been called.
func (w *HeadlessWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close marks the window closed.
func (w *HeadlessWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// Headless is a [Context] with no real browser behind it. Opened URLs are
// recorded instead of navigated, and the query string is an in-memory value.
// It backs tests and server-side session holders where the authorization
// hand-off happens out of band.
type Headless struct {
	mu      sync.Mutex
	query   url.Values
	opened  []string
	windows []*HeadlessWindow

	// RefuseWindows simulates a popup blocker: OpenWindow returns
	// (nil, nil).
	RefuseWindows bool
}

// NewHeadless creates a Headless context with an empty query string.
func NewHeadless() *Headless {
	return &Headless{query: url.Values{}}
}

// OpenWindow records rawURL and returns a controllable window handle.
func (h *Headless) OpenWindow(rawURL string) (Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.opened = append(h.opened, rawURL)
	if h.RefuseWindows {
		return nil, nil
	}

	w := &HeadlessWindow{}
	h.windows = append(h.windows, w)
	return w, nil
}

// Query returns a copy of the in-memory query parameters.
func (h *Headless) Query() url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := url.Values{}
	for k, vs := range h.query {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// ReplaceQuery swaps the in-memory query parameters.
func (h *Headless) ReplaceQuery(values url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := url.Values{}
	for k, vs := range values {
		for _, v := range vs {
			next.Add(k, v)
		}
	}
	h.query = next
}

// SetQueryParam sets a single query parameter, as a redirect landing would.
func (h *Headless) SetQueryParam(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query.Set(key, value)
}

// OpenedURLs returns every URL passed to OpenWindow, in order.
func (h *Headless) OpenedURLs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.opened))
	copy(out, h.opened)
	return out
}

// LastWindow returns the most recently opened window, or nil.
func (h *Headless) LastWindow() *HeadlessWindow {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.windows) == 0 {
		return nil
	}
	return h.windows[len(h.windows)-1]
}
