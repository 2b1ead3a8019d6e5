package sessionkit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/halcyonlabs/sessionkit/policy"
)

const presetMaxBodyBytes = 1 << 20

// presetResolver fetches named policy presets from the authorization
// service and caches them for the process lifetime. Presets are static
// server-side documents; refetching per Connect would only add a network
// round trip to every session.
type presetResolver struct {
	client  *http.Client
	baseURL string

	mu    sync.Mutex
	cache map[string]policy.Policies
}

func newPresetResolver(client *http.Client, baseURL string) *presetResolver {
	return &presetResolver{
		client:  client,
		baseURL: baseURL,
		cache:   make(map[string]policy.Policies),
	}
}

// presetDocument is the service's preset payload: policies keyed by chain
// id.
type presetDocument struct {
	Chains map[string]policy.Policies `json:"chains"`
}

// Resolve returns the normalized policy set a preset defines for chainID.
// Transport and decode failures surface as [ErrPresetUnavailable]; a preset
// that exists but defines nothing for the chain is [ErrPresetNoPolicies].
func (r *presetResolver) Resolve(ctx context.Context, name, chainID string) (*policy.Policies, error) {
	key := name + "\x00" + chainID

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		cloned := policy.Clone(cached)
		return &cloned, nil
	}
	r.mu.Unlock()

	doc, err := r.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	granted, ok := doc.Chains[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: preset %q has no policies for chain %s", ErrPresetNoPolicies, name, chainID)
	}

	normalized := policy.Normalize(granted)

	r.mu.Lock()
	r.cache[key] = policy.Clone(normalized)
	r.mu.Unlock()

	return &normalized, nil
}

func (r *presetResolver) fetch(ctx context.Context, name string) (*presetDocument, error) {
	endpoint := strings.TrimRight(r.baseURL, "/") + "/presets/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: preset %q: status %d", ErrPresetUnavailable, name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, presetMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetUnavailable, err)
	}

	var doc presetDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetUnavailable, err)
	}

	return &doc, nil
}
