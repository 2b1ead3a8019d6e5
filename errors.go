package sessionkit

import "errors"

var (
	// ErrPoliciesRequired is returned by Build when neither an inline
	// policy set nor a preset reference was configured. This is the one
	// configuration error the session engine treats as fatal.
	ErrPoliciesRequired = errors.New("session policies or preset required")
	// ErrSigningBridgeRequired is returned by Build when no signing
	// bridge was supplied.
	ErrSigningBridgeRequired = errors.New("signing bridge required")
	// ErrPresetUnavailable is returned when the preset configuration
	// could not be fetched from the authorization service.
	ErrPresetUnavailable = errors.New("policy preset unavailable")
	// ErrPresetNoPolicies is returned when the preset resolved but
	// carries no policies for the configured chain.
	ErrPresetNoPolicies = errors.New("policy preset has no policies for chain")
	// ErrAuthorizationFailed is returned when the keychain subscription
	// ended without delivering a usable grant.
	ErrAuthorizationFailed = errors.New("session authorization failed")
	// ErrWindowBlocked is returned when the environment refused to open
	// the authorization window.
	ErrWindowBlocked = errors.New("authorization window blocked")
)
