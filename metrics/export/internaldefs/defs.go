package internaldefs

import (
	sessionkit "github.com/halcyonlabs/sessionkit"
)

// CounterDef binds a core metric id to its stable exported name.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram id to its stable exported name.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter. Exporters iterate this slice so
// all of them expose identical names.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricConnectSuccess, Name: "sessionkit_connect_success_total", Help: "Established sessions."},
	{ID: sessionkit.MetricConnectFailure, Name: "sessionkit_connect_failure_total", Help: "Failed authorization attempts."},
	{ID: sessionkit.MetricProbeHit, Name: "sessionkit_probe_hit_total", Help: "Probes that found a restorable session."},
	{ID: sessionkit.MetricProbeMiss, Name: "sessionkit_probe_miss_total", Help: "Probes that found no session."},
	{ID: sessionkit.MetricRedirectIngested, Name: "sessionkit_redirect_ingested_total", Help: "Accepted redirect payloads."},
	{ID: sessionkit.MetricRedirectMalformed, Name: "sessionkit_redirect_malformed_total", Help: "Rejected redirect payloads."},
	{ID: sessionkit.MetricGrantExpired, Name: "sessionkit_grant_expired_total", Help: "Sessions dropped at the expiry check."},
	{ID: sessionkit.MetricEscalationRejected, Name: "sessionkit_escalation_rejected_total", Help: "Restores refused by the policy subset guard."},
	{ID: sessionkit.MetricDisconnect, Name: "sessionkit_disconnect_total", Help: "Explicit disconnects."},
	{ID: sessionkit.MetricKeychainTimeout, Name: "sessionkit_keychain_timeout_total", Help: "Authorization handshakes that timed out."},
	{ID: sessionkit.MetricWalletConnectSuccess, Name: "sessionkit_wallet_connect_success_total", Help: "Successful external wallet connections."},
	{ID: sessionkit.MetricWalletConnectFailure, Name: "sessionkit_wallet_connect_failure_total", Help: "Failed external wallet connections."},
	{ID: sessionkit.MetricPresetResolved, Name: "sessionkit_preset_resolved_total", Help: "Successful preset policy fetches."},
	{ID: sessionkit.MetricPresetFailure, Name: "sessionkit_preset_failure_total", Help: "Failed preset policy fetches."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricRestoreLatency, Name: "sessionkit_restore_latency_seconds", Help: "Session restore latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the core
// bucket layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are name-safe forms of HistogramBounds for exporters
// that cannot carry an le label.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice into the fixed
// bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
