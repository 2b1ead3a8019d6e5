package sessionkit

import (
	"testing"
	"time"
)

func TestGrantExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name      string
		expiresAt string
		want      bool
	}{
		{name: "future", expiresAt: "1700000001", want: false},
		{name: "past", expiresAt: "1699999999", want: true},
		{name: "exactly now", expiresAt: "1700000000", want: true},
		{name: "unparseable", expiresAt: "not-a-number", want: true},
		{name: "empty", expiresAt: "", want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &SessionGrant{ExpiresAt: tc.expiresAt}
			if got := g.Expired(now); got != tc.want {
				t.Fatalf("Expired(%q) = %v, want %v", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestGrantComplete(t *testing.T) {
	full := SessionGrant{
		Username:  "alice",
		Address:   "0xabc",
		OwnerGUID: "0xowner",
		ExpiresAt: "123",
	}
	if !full.complete() {
		t.Fatal("grant with all required fields must be complete")
	}

	for _, mutate := range []func(*SessionGrant){
		func(g *SessionGrant) { g.Username = "" },
		func(g *SessionGrant) { g.Address = "" },
		func(g *SessionGrant) { g.OwnerGUID = "" },
		func(g *SessionGrant) { g.ExpiresAt = "" },
	} {
		g := full
		mutate(&g)
		if g.complete() {
			t.Fatalf("grant %+v must be incomplete", g)
		}
	}
}

func TestGrantApplyDefaults(t *testing.T) {
	g := SessionGrant{
		Username:  "alice",
		Address:   "0xabc",
		OwnerGUID: "0xowner",
		ExpiresAt: "123",
	}
	g.applyDefaults("0xsigner")

	if g.GuardianKeyGUID != DefaultFieldValue {
		t.Fatalf("guardianKeyGuid not defaulted: %q", g.GuardianKeyGUID)
	}
	if g.MetadataHash != DefaultFieldValue {
		t.Fatalf("metadataHash not defaulted: %q", g.MetadataHash)
	}
	if g.SessionKeyGUID != "0xsigner" {
		t.Fatalf("sessionKeyGuid not defaulted to signer: %q", g.SessionKeyGUID)
	}

	// Explicit values survive.
	g2 := g
	g2.GuardianKeyGUID = "0xguardian"
	g2.SessionKeyGUID = "0xexplicit"
	g2.applyDefaults("0xsigner")
	if g2.GuardianKeyGUID != "0xguardian" || g2.SessionKeyGUID != "0xexplicit" {
		t.Fatal("applyDefaults must not overwrite explicit fields")
	}
}
