package sessionkit

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestIngestRedirectRoundTrip(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	in := SessionGrant{
		Username:        "alice",
		Address:         "0xABCDEF",
		OwnerGUID:       "0xowner",
		ExpiresAt:       strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
		TransactionHash: "0xtx",
	}

	got := f.controller.IngestRedirect(context.Background(), encodeGrant(t, in))
	if got == nil {
		t.Fatal("expected a grant")
	}
	if got.Username != in.Username || got.Address != in.Address || got.OwnerGUID != in.OwnerGUID {
		t.Fatalf("explicit fields not preserved: %+v", got)
	}
	if got.TransactionHash != "0xtx" {
		t.Fatalf("optional field not preserved: %q", got.TransactionHash)
	}
	if got.GuardianKeyGUID != DefaultFieldValue || got.MetadataHash != DefaultFieldValue {
		t.Fatalf("omitted fields not defaulted: guardian=%q metadata=%q", got.GuardianKeyGUID, got.MetadataHash)
	}
}

func TestIngestRedirectStrippedPadding(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	encoded := encodeGrant(t, SessionGrant{
		Username:  "alice",
		Address:   "0xABCDEF",
		OwnerGUID: "0xowner",
		ExpiresAt: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})
	stripped := strings.TrimRight(encoded, "=")
	if stripped == encoded {
		t.Skip("payload needs no padding; nothing to strip")
	}

	if got := f.controller.IngestRedirect(context.Background(), stripped); got == nil {
		t.Fatal("expected padding-stripped payload to decode")
	}
}

func TestIngestRedirectMissingOwnerGUID(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	got := f.controller.IngestRedirect(context.Background(), encodeGrant(t, SessionGrant{
		Username:  "alice",
		Address:   "0xABCDEF",
		ExpiresAt: "123",
	}))
	if got != nil {
		t.Fatal("expected nil for a grant missing ownerGuid")
	}
}

func TestIngestRedirectGarbageNeverPanics(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	for _, payload := range []string{
		"",
		"!!!not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"username":`)),
	} {
		if got := f.controller.IngestRedirect(context.Background(), payload); got != nil {
			t.Fatalf("expected nil for payload %q", payload)
		}
	}

	snapshot := f.controller.MetricsSnapshot()
	if snapshot.Counters[MetricRedirectMalformed] == 0 {
		t.Fatal("expected malformed redirects to be counted")
	}
}

func TestIngestRedirectDefaultsSessionKeyGUIDToSigner(t *testing.T) {
	f, cleanup := newFixture(t, nil)
	defer cleanup()

	signer := seedSession(t, f, SessionGrant{
		Username:  "alice",
		Address:   "0xABCDEF",
		OwnerGUID: "0xowner",
		ExpiresAt: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})

	// Restore loads the signer into memory; the ingested grant then
	// inherits its guid.
	if _, err := f.controller.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	got := f.controller.IngestRedirect(context.Background(), encodeGrant(t, SessionGrant{
		Username:  "bob",
		Address:   "0x123456",
		OwnerGUID: "0xowner2",
		ExpiresAt: strconv.FormatInt(time.Now().Add(2*time.Hour).Unix(), 10),
	}))
	if got == nil {
		t.Fatal("expected a grant")
	}
	if got.SessionKeyGUID != signer.GUID() {
		t.Fatalf("expected sessionKeyGuid %q, got %q", signer.GUID(), got.SessionKeyGUID)
	}
}
