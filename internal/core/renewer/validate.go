package renewer

import (
	"go.uber.org/zap"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

// validate is the renewal eligibility check. Rules are applied in
// order and short-circuit on the first violation: cached renewal
// policy, expiry grace window, proof of possession, audience
// restriction. It has no side effects beyond logging and metrics.
func (r *Renewer) validate(
	assertion *domain.Assertion,
	token *domain.ReceivedToken,
	cached *domain.CachedTokenRecord,
	p Parameters,
) error {
	if cached.Properties == nil {
		r.deny(denialNoProperties, zap.String("token_id", assertion.ID()))
		return domain.RequestFailedError("error in getting properties from cached token", nil)
	}

	if !cached.BoolProperty(domain.PropertyRenewalAllowed) {
		r.deny(denialRenewalNotAllowed, zap.String("token_id", assertion.ID()))
		return domain.RequestFailedError("the token is not allowed to be renewed", nil)
	}

	if token.State == domain.TokenStateExpired {
		if !r.allowRenewalAfterExpiry || !cached.BoolProperty(domain.PropertyRenewalAllowedAfterExpiry) {
			r.deny(denialExpiryNotAllowed, zap.String("token_id", assertion.ID()))
			return domain.RequestFailedError("renewal after expiry is not allowed", nil)
		}
		window, err := assertion.Window()
		if err != nil {
			return domain.RequestFailedError("cannot renew assertion", err)
		}
		elapsed := r.now().Sub(window.NotOnOrAfter)
		if elapsed > r.maxExpiry {
			r.deny(denialGraceExceeded,
				zap.String("token_id", assertion.ID()),
				zap.Time("not_on_or_after", window.NotOnOrAfter),
				zap.Duration("elapsed", elapsed),
				zap.Duration("max_expiry", r.maxExpiry),
			)
			return domain.RequestFailedError("the token expired too long ago to be renewed", nil)
		}
	}

	if r.verifyProofOfPossession {
		descriptor, err := r.subjectKeys.ParseSubjectKey(assertion, r.sts.SignatureCrypto, r.sts.Secrets)
		if err != nil {
			return domain.RequestFailedError("cannot renew assertion", err)
		}
		if !domain.MatchProofOfPossession(descriptor, p.Evidence) {
			r.deny(denialProofOfPossession,
				zap.String("token_id", assertion.ID()),
				zap.Int("signed_results", len(p.Evidence.SignedResults)),
				zap.Int("tls_certificates", len(p.Evidence.TLSPeerCertificates)),
			)
			return domain.InvalidRequestError(
				"failed to verify the proof of possession of the key associated with the token: no matching key found in the request")
		}
	}

	if p.AppliesToAddress != "" {
		if !domain.MatchAudience(p.AppliesToAddress, assertion) {
			r.deny(denialAudience,
				zap.String("token_id", assertion.ID()),
				zap.String("applies_to", p.AppliesToAddress),
			)
			return domain.InvalidRequestError("the AppliesTo address does not match the audience restriction")
		}
	}

	return nil
}
