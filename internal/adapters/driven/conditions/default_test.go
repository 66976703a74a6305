//go:build unit

package conditions

import (
	"testing"
	"time"

	"github.com/yehevah/saml-sts/internal/core/ports"
)

var providerNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() ProviderOption {
	return withProviderClock(func() time.Time { return providerNow })
}

// TestDefaultProvider_DefaultWindow verifies the 30-minute lifetime and
// the backdated not-before.
func TestDefaultProvider_DefaultWindow(t *testing.T) {
	p := NewDefaultProvider(fixedClock())
	out, err := p.Conditions(ports.ConditionsContext{})
	if err != nil {
		t.Fatalf("Conditions failed: %v", err)
	}
	if !out.Window.NotBefore.Equal(providerNow.Add(-60 * time.Second)) {
		t.Errorf("NotBefore = %v, want 60s backdated", out.Window.NotBefore)
	}
	if !out.Window.NotOnOrAfter.Equal(providerNow.Add(30 * time.Minute)) {
		t.Errorf("NotOnOrAfter = %v, want 30m lifetime", out.Window.NotOnOrAfter)
	}
	if len(out.AudienceURIs) != 0 {
		t.Error("no AppliesTo should mean no audience scope")
	}
}

// TestDefaultProvider_ClientLifetime verifies the accept, cap, and fail
// behaviors for client-requested lifetimes.
func TestDefaultProvider_ClientLifetime(t *testing.T) {
	cases := []struct {
		name      string
		opts      []ProviderOption
		requested time.Duration
		want      time.Duration
		wantErr   bool
	}{
		{"ignored unless accepted", nil, 2 * time.Hour, 30 * time.Minute, false},
		{"accepted within max", []ProviderOption{WithAcceptClientLifetime(true)}, 2 * time.Hour, 2 * time.Hour, false},
		{"capped at max", []ProviderOption{WithAcceptClientLifetime(true)}, 20 * time.Hour, 12 * time.Hour, false},
		{"exceedance fails", []ProviderOption{WithAcceptClientLifetime(true), WithFailLifetimeExceedance(true)}, 20 * time.Hour, 0, true},
		{"zero request keeps default", []ProviderOption{WithAcceptClientLifetime(true)}, 0, 30 * time.Minute, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewDefaultProvider(append(tc.opts, fixedClock())...)
			out, err := p.Conditions(ports.ConditionsContext{RequestedLifetime: tc.requested})
			if tc.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Conditions failed: %v", err)
			}
			if !out.Window.NotOnOrAfter.Equal(providerNow.Add(tc.want)) {
				t.Errorf("NotOnOrAfter = %v, want now+%v", out.Window.NotOnOrAfter, tc.want)
			}
		})
	}
}

// TestDefaultProvider_AudienceScope verifies the AppliesTo address
// becomes the audience of the renewed assertion.
func TestDefaultProvider_AudienceScope(t *testing.T) {
	p := NewDefaultProvider(fixedClock())
	out, err := p.Conditions(ports.ConditionsContext{AppliesToAddress: "urn:service:payments"})
	if err != nil {
		t.Fatalf("Conditions failed: %v", err)
	}
	if len(out.AudienceURIs) != 1 || out.AudienceURIs[0] != "urn:service:payments" {
		t.Errorf("AudienceURIs = %v", out.AudienceURIs)
	}
}

// TestDefaultProvider_CustomPolicy verifies the lifetime and skew
// options take effect.
func TestDefaultProvider_CustomPolicy(t *testing.T) {
	p := NewDefaultProvider(
		WithLifetime(5*time.Minute),
		WithFutureTimeToLive(10*time.Second),
		fixedClock(),
	)
	out, err := p.Conditions(ports.ConditionsContext{})
	if err != nil {
		t.Fatalf("Conditions failed: %v", err)
	}
	if !out.Window.NotBefore.Equal(providerNow.Add(-10 * time.Second)) {
		t.Errorf("NotBefore = %v", out.Window.NotBefore)
	}
	if !out.Window.NotOnOrAfter.Equal(providerNow.Add(5 * time.Minute)) {
		t.Errorf("NotOnOrAfter = %v", out.Window.NotOnOrAfter)
	}
}
