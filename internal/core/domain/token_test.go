//go:build unit

package domain

import (
	"testing"
	"time"
)

// TestTokenState_String verifies the lifecycle state names.
func TestTokenState_String(t *testing.T) {
	cases := map[TokenState]string{
		TokenStateNone:      "none",
		TokenStateValid:     "valid",
		TokenStateInvalid:   "invalid",
		TokenStateCancelled: "cancelled",
		TokenStateExpired:   "expired",
		TokenState(99):      "unknown",
	}
	for state, want := range cases {
		if state.String() != want {
			t.Errorf("%d.String() = %q, want %q", state, state.String(), want)
		}
	}
}

// TestRenewingFlags_Properties verifies the flags render as the
// well-known cached-record properties.
func TestRenewingFlags_Properties(t *testing.T) {
	props := RenewingFlags{Allow: true, AllowAfterExpiry: false}.Properties()
	if props[PropertyRenewalAllowed] != "true" {
		t.Errorf("allow = %q", props[PropertyRenewalAllowed])
	}
	if props[PropertyRenewalAllowedAfterExpiry] != "false" {
		t.Errorf("allow after expiry = %q", props[PropertyRenewalAllowedAfterExpiry])
	}

	defaults := DefaultRenewingFlags()
	if !defaults.Allow || defaults.AllowAfterExpiry {
		t.Errorf("defaults = %+v, want allow without after-expiry", defaults)
	}
}

// TestCachedTokenRecord_BoolProperty verifies absent and malformed
// values read as false.
func TestCachedTokenRecord_BoolProperty(t *testing.T) {
	record := &CachedTokenRecord{
		Expires: time.Now(),
		Properties: map[string]string{
			PropertyRenewalAllowed:            "true",
			PropertyRenewalAllowedAfterExpiry: "not-a-bool",
		},
	}
	if !record.BoolProperty(PropertyRenewalAllowed) {
		t.Error("true property should read true")
	}
	if record.BoolProperty(PropertyRenewalAllowedAfterExpiry) {
		t.Error("malformed property should read false")
	}
	if record.BoolProperty("absent") {
		t.Error("absent property should read false")
	}
	if (&CachedTokenRecord{}).BoolProperty(PropertyRenewalAllowed) {
		t.Error("record without properties should read false")
	}
}

// TestFingerprint_DiffersPerSignature verifies distinct signatures get
// distinct cache keys and the key is stable.
func TestFingerprint_DiffersPerSignature(t *testing.T) {
	a := Fingerprint([]byte("sig-a"))
	b := Fingerprint([]byte("sig-b"))
	if a == b {
		t.Error("distinct signatures should produce distinct fingerprints")
	}
	if a != Fingerprint([]byte("sig-a")) {
		t.Error("fingerprint should be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
