package sessionkit

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/halcyonlabs/sessionkit/policy"
)

// authorizationURL builds the keychain session page URL for an interactive
// authorization. Exactly one of the preset name or the inline policy set is
// embedded.
func (c *Controller) authorizationURL(pubKey string, requested *policy.Policies, attemptID string) (string, error) {
	q := url.Values{}
	q.Set("public_key", pubKey)
	q.Set("redirect_uri", c.config.Keychain.RedirectURI)
	q.Set("redirect_query_name", c.config.Keychain.RedirectQueryName)
	q.Set("rpc_url", c.config.Chain.RPCURL)

	if c.config.Preset != "" {
		q.Set("preset", c.config.Preset)
	} else {
		encoded, err := json.Marshal(requested)
		if err != nil {
			return "", err
		}
		q.Set("policies", string(encoded))
	}

	if len(c.config.SignupOptions) > 0 {
		encoded, err := json.Marshal(c.config.SignupOptions)
		if err != nil {
			return "", err
		}
		q.Set("signers", string(encoded))
	}

	if attemptID != "" {
		q.Set("state", attemptID)
	}

	return keychainPage(c.config.Keychain.URL, "session") + "?" + q.Encode(), nil
}

// disconnectURL builds the keychain disconnect page URL.
func (c *Controller) disconnectURL() string {
	base := keychainPage(c.config.Keychain.URL, "disconnect")
	if c.config.Keychain.DisconnectRedirectURL == "" {
		return base
	}

	q := url.Values{}
	q.Set("redirect_url", c.config.Keychain.DisconnectRedirectURL)
	return base + "?" + q.Encode()
}

func keychainPage(baseURL, page string) string {
	return strings.TrimRight(baseURL, "/") + "/" + page
}
