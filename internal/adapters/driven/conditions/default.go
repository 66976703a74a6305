// Package conditions provides the default conditions-policy provider.
package conditions

import (
	"fmt"
	"time"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

const (
	// DefaultLifetime is the validity duration granted when the
	// client expresses no preference: 30 minutes.
	DefaultLifetime = 30 * time.Minute
	// DefaultMaxLifetime caps client-requested lifetimes: 12 hours.
	DefaultMaxLifetime = 12 * time.Hour
	// DefaultFutureTimeToLive backdates not-before to absorb clock
	// skew at the relying party: 60 seconds.
	DefaultFutureTimeToLive = 60 * time.Second
)

// ProviderOption is a functional option for the default provider.
type ProviderOption func(*DefaultProvider)

// WithLifetime sets the granted validity duration.
func WithLifetime(d time.Duration) ProviderOption {
	return func(p *DefaultProvider) { p.lifetime = d }
}

// WithMaxLifetime caps client-requested lifetimes.
func WithMaxLifetime(d time.Duration) ProviderOption {
	return func(p *DefaultProvider) { p.maxLifetime = d }
}

// WithAcceptClientLifetime honors the lifetime the client asked for,
// bounded by the max lifetime.
func WithAcceptClientLifetime(accept bool) ProviderOption {
	return func(p *DefaultProvider) { p.acceptClientLifetime = accept }
}

// WithFailLifetimeExceedance makes a request beyond the max lifetime
// an error instead of silently capping it.
func WithFailLifetimeExceedance(fail bool) ProviderOption {
	return func(p *DefaultProvider) { p.failLifetimeExceedance = fail }
}

// WithFutureTimeToLive sets the not-before backdating skew allowance.
func WithFutureTimeToLive(d time.Duration) ProviderOption {
	return func(p *DefaultProvider) { p.futureTimeToLive = d }
}

// withProviderClock overrides the time source. Test hook.
func withProviderClock(now func() time.Time) ProviderOption {
	return func(p *DefaultProvider) { p.now = now }
}

// DefaultProvider computes validity windows from a configured lifetime
// policy, optionally honoring client-requested lifetimes, and scopes
// the renewed assertion to the requested relying party.
type DefaultProvider struct {
	lifetime               time.Duration
	maxLifetime            time.Duration
	acceptClientLifetime   bool
	failLifetimeExceedance bool
	futureTimeToLive       time.Duration
	now                    func() time.Time
}

// NewDefaultProvider creates a provider with the default policy.
func NewDefaultProvider(opts ...ProviderOption) *DefaultProvider {
	p := &DefaultProvider{
		lifetime:         DefaultLifetime,
		maxLifetime:      DefaultMaxLifetime,
		futureTimeToLive: DefaultFutureTimeToLive,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Conditions computes the fresh validity window and audience scope.
func (p *DefaultProvider) Conditions(ctx ports.ConditionsContext) (domain.Conditions, error) {
	lifetime := p.lifetime
	if p.acceptClientLifetime && ctx.RequestedLifetime > 0 {
		switch {
		case ctx.RequestedLifetime <= p.maxLifetime:
			lifetime = ctx.RequestedLifetime
		case p.failLifetimeExceedance:
			return domain.Conditions{}, fmt.Errorf(
				"requested lifetime %s exceeds maximum %s", ctx.RequestedLifetime, p.maxLifetime)
		default:
			lifetime = p.maxLifetime
		}
	}

	now := p.now().UTC()
	out := domain.Conditions{
		Window: domain.ValidityWindow{
			NotBefore:    now.Add(-p.futureTimeToLive),
			NotOnOrAfter: now.Add(lifetime),
		},
	}
	if ctx.AppliesToAddress != "" {
		out.AudienceURIs = []string{ctx.AppliesToAddress}
	}
	return out, nil
}

// Ensure DefaultProvider implements the conditions port.
var _ ports.ConditionsProvider = (*DefaultProvider)(nil)
