// Package renewer implements the renewal engine of the security-token
// service: given a previously issued (valid or recently expired)
// assertion, it decides whether renewal is permitted, regenerates the
// validity window, re-signs the assertion, and atomically replaces the
// cached record.
package renewer

import (
	"time"

	"go.uber.org/zap"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// DefaultMaxExpiry is how long a token may be expired and still be
// renewed: 30 minutes.
const DefaultMaxExpiry = 30 * time.Minute

// Denial rule labels, recorded on metrics and logged on every denial.
const (
	denialTokenState        = "token_state"
	denialNoCache           = "no_cache"
	denialNotCached         = "not_cached"
	denialNoProperties      = "properties_missing"
	denialRenewalNotAllowed = "renewal_not_allowed"
	denialExpiryNotAllowed  = "expiry_not_allowed"
	denialGraceExceeded     = "grace_exceeded"
	denialProofOfPossession = "proof_of_possession"
	denialAudience          = "audience"
)

// STSSettings are the global signing defaults of the service, used
// whenever the call's realm carries no override.
type STSSettings struct {
	SignatureCrypto     ports.CryptoHandle
	Secrets             ports.SecretResolver
	SignatureAlias      string
	SignatureProperties domain.SignatureProperties
}

// Dependencies are the driven collaborators a renewer is built on.
// All fields are required.
type Dependencies struct {
	Codec       ports.AssertionCodec
	Signer      ports.AssertionSigner
	SubjectKeys ports.SubjectKeyParser
	Conditions  ports.ConditionsProvider
}

// Parameters carry the per-call inputs to a renewal.
type Parameters struct {
	// Token is the token presented for renewal.
	Token *domain.ReceivedToken

	// Cache is the token store handle supplied by the caller context.
	// Its absence is a service configuration fault.
	Cache ports.TokenCache

	// Principal and Realm identify the requesting subject and the
	// credential scope the renewal runs under.
	Principal string
	Realm     string

	// AppliesToAddress is the requested relying-party identifier;
	// empty means the caller named none.
	AppliesToAddress string

	// KeyRequirements and EncryptionRequirements are the
	// request-negotiated algorithm preferences. Renewal never
	// encrypts; the encryption preferences are handed to the
	// conditions provider unchanged.
	KeyRequirements        domain.KeyRequirements
	EncryptionRequirements domain.EncryptionRequirements

	// RequestedLifetime is the validity duration the client asked
	// for; zero means no preference.
	RequestedLifetime time.Duration

	// Renewing are the renewal-policy flags to record on the renewed
	// token's cache entry.
	Renewing domain.RenewingFlags

	// Evidence is the proof-of-possession evidence from the enclosing
	// exchange: verified signed-message results and the TLS peer chain.
	Evidence domain.Evidence

	// Additional carries auxiliary properties through to the
	// conditions provider.
	Additional map[string]any
}

// Response is the outcome of a successful renewal. Ownership transfers
// to the caller.
type Response struct {
	// Assertion is the serialized renewed assertion.
	Assertion []byte
	// TokenID is the renewed assertion's identifier.
	TokenID string
	// Created and Expires are the bounds of the new validity window.
	Created time.Time
	Expires time.Time
}

// Renewer renews valid or recently expired assertions. Configuration
// is fixed at construction and safe for concurrent reads; each Renew
// call is independent and may run concurrently with others.
//
// Two calls racing to renew the same original token both delete the
// same stale keys and insert distinct new entries; at most one winner
// stays discoverable by identifier. Callers needing exactly-once
// renewal must serialize externally.
type Renewer struct {
	codec       ports.AssertionCodec
	signer      ports.AssertionSigner
	subjectKeys ports.SubjectKeyParser
	conditions  ports.ConditionsProvider

	sts    STSSettings
	realms map[string]ports.Realm

	signToken               bool
	verifyProofOfPossession bool
	allowRenewalAfterExpiry bool
	maxExpiry               time.Duration

	now     func() time.Time
	logger  *zap.Logger
	metrics ports.MetricsRecorder
}

// Option configures a Renewer.
type Option func(*Renewer)

// WithSignToken controls whether renewed assertions are re-signed.
// When disabled, any existing signature is stripped instead, and the
// renewed token is not cached. Default: sign.
func WithSignToken(sign bool) Option {
	return func(r *Renewer) { r.signToken = sign }
}

// WithVerifyProofOfPossession controls whether the caller must prove
// possession of the key bound to the assertion. Default: verify.
func WithVerifyProofOfPossession(verify bool) Option {
	return func(r *Renewer) { r.verifyProofOfPossession = verify }
}

// WithAllowRenewalAfterExpiry globally enables renewing expired tokens;
// the cached record must also opt in per token. Default: disallowed.
func WithAllowRenewalAfterExpiry(allow bool) Option {
	return func(r *Renewer) { r.allowRenewalAfterExpiry = allow }
}

// WithMaxExpiry bounds how long after expiry a token may still be
// renewed. Default: 30 minutes.
func WithMaxExpiry(d time.Duration) Option {
	return func(r *Renewer) { r.maxExpiry = d }
}

// WithRealms installs the realm override map.
func WithRealms(realms map[string]ports.Realm) Option {
	return func(r *Renewer) { r.realms = realms }
}

// WithConditionsProvider replaces the conditions provider.
func WithConditionsProvider(p ports.ConditionsProvider) Option {
	return func(r *Renewer) { r.conditions = p }
}

// WithLogger installs a logger; nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renewer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(r *Renewer) {
		if m != nil {
			r.metrics = m
		}
	}
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(r *Renewer) { r.now = now }
}

// New builds a renewer over the given collaborators and global signing
// defaults.
func New(deps Dependencies, sts STSSettings, opts ...Option) *Renewer {
	r := &Renewer{
		codec:                   deps.Codec,
		signer:                  deps.Signer,
		subjectKeys:             deps.SubjectKeys,
		conditions:              deps.Conditions,
		sts:                     sts,
		signToken:               true,
		verifyProofOfPossession: true,
		maxExpiry:               DefaultMaxExpiry,
		now:                     time.Now,
		logger:                  zap.NewNop(),
		metrics:                 noopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CanHandle reports whether the token's payload is a recognized
// assertion element in either schema namespace.
func (r *Renewer) CanHandle(token *domain.ReceivedToken) bool {
	return r.CanHandleInRealm(token, "")
}

// CanHandleInRealm additionally requires the realm to be configured
// when one is named.
func (r *Renewer) CanHandleInRealm(token *domain.ReceivedToken, realm string) bool {
	if realm != "" {
		if _, ok := r.realms[realm]; !ok {
			return false
		}
	}
	if token == nil || len(token.Payload) == 0 {
		return false
	}
	return r.codec.Recognize(token.Payload)
}

// Renew renews the presented token. Client faults surface as
// invalid_request errors, everything else as request_failed; on
// success the stale cache entries are superseded by the renewed token.
func (r *Renewer) Renew(p Parameters) (*Response, error) {
	token := p.Token
	if token == nil || len(token.Payload) == 0 ||
		(token.State != domain.TokenStateValid && token.State != domain.TokenStateExpired) {
		r.deny(denialTokenState, zap.Stringer("state", stateOf(token)))
		return nil, domain.InvalidRequestError("the token to renew is null or invalid")
	}
	if p.Cache == nil {
		r.deny(denialNoCache)
		return nil, domain.RequestFailedError("a token cache must be configured to renew assertions", nil)
	}

	assertion, err := r.codec.Parse(token.Payload)
	if err != nil {
		r.logger.Warn("failed to parse assertion for renewal", zap.Error(err))
		r.metrics.RecordRenewal("unknown", false)
		return nil, domain.RequestFailedError("cannot renew assertion", err)
	}
	version := assertion.Version()

	oldFingerprint := domain.Fingerprint(assertion.SignatureValue())
	cached, err := p.Cache.Get(oldFingerprint)
	if err != nil || cached == nil {
		r.deny(denialNotCached, zap.String("token_id", assertion.ID()))
		r.metrics.RecordRenewal(version.String(), false)
		return nil, domain.RequestFailedError("the token to be renewed must be stored in the cache", err)
	}

	if err := r.validate(assertion, token, cached, p); err != nil {
		r.metrics.RecordRenewal(version.String(), false)
		return nil, err
	}

	// From here on the original assertion stays untouched: renewal
	// works on a deep copy under a fresh identifier.
	renewed := assertion.Clone()
	oldID := renewed.Reidentify()

	if err := r.regenerateConditions(renewed, token, p); err != nil {
		r.logger.Warn("conditions provider failed",
			zap.String("old_token_id", oldID), zap.Error(err))
		r.metrics.RecordRenewal(version.String(), false)
		return nil, domain.RequestFailedError("cannot renew assertion", err)
	}

	signed, signatureValue, err := r.signAssertion(renewed, p)
	if err != nil {
		r.logger.Warn("signing renewed assertion failed",
			zap.String("old_token_id", oldID), zap.Error(err))
		r.metrics.RecordRenewal(version.String(), false)
		return nil, domain.RequestFailedError("cannot renew assertion", err)
	}

	// Stale keys are removed and the new record inserted only now,
	// after signing succeeded, so a failure above leaves the original
	// cached record untouched.
	if err := r.replaceCachedToken(p, renewed, signed, signatureValue, oldID, oldFingerprint); err != nil {
		r.metrics.RecordRenewal(version.String(), false)
		return nil, err
	}

	window, err := renewed.Window()
	if err != nil {
		r.metrics.RecordRenewal(version.String(), false)
		return nil, domain.RequestFailedError("cannot renew assertion", err)
	}

	r.logger.Info("token successfully renewed",
		zap.String("old_token_id", oldID),
		zap.String("token_id", renewed.ID()),
		zap.Stringer("version", version),
		zap.Time("not_before", window.NotBefore),
		zap.Time("not_on_or_after", window.NotOnOrAfter),
	)
	r.metrics.RecordRenewal(version.String(), true)

	return &Response{
		Assertion: signed,
		TokenID:   renewed.ID(),
		Created:   window.NotBefore,
		Expires:   window.NotOnOrAfter,
	}, nil
}

// deny logs a denial and records it on metrics.
func (r *Renewer) deny(rule string, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("rule", rule)}, fields...)
	r.logger.Warn("renewal denied", fields...)
	r.metrics.RecordDenial(rule)
}

func stateOf(token *domain.ReceivedToken) domain.TokenState {
	if token == nil {
		return domain.TokenStateNone
	}
	return token.State
}

// noopMetrics is the default recorder when none is configured.
type noopMetrics struct{}

func (noopMetrics) RecordRenewal(string, bool) {}
func (noopMetrics) RecordDenial(string)        {}
func (noopMetrics) RecordCacheCleanupFailure() {}

var _ ports.MetricsRecorder = noopMetrics{}
