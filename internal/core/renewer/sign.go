package renewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// signAssertion is the signing coordinator: it resolves which
// credential, signature algorithm, and canonicalization method to use
// (global defaults, realm overrides, request preferences with
// whitelist fallback), then delegates the cryptographic signing.
//
// When signing is disabled, any existing signature is stripped instead
// and the serialized assertion carries no signature value.
func (r *Renewer) signAssertion(a *domain.Assertion, p Parameters) ([]byte, []byte, error) {
	if !r.signToken {
		a.StripSignature()
		out, err := r.codec.Serialize(a)
		if err != nil {
			return nil, nil, err
		}
		return out, nil, nil
	}

	// Global STS defaults, then realm overrides. A realm with its own
	// signature keystore replaces the secret resolver and alias as a
	// unit; signature properties override independently.
	cryptoHandle := r.sts.SignatureCrypto
	secrets := r.sts.Secrets
	alias := r.sts.SignatureAlias
	sigProps := r.sts.SignatureProperties

	if p.Realm != "" {
		if realm, ok := r.realms[p.Realm]; ok {
			if realm.SignatureCrypto != nil {
				r.logger.Debug("realm signature keystore used", zap.String("realm", p.Realm))
				cryptoHandle = realm.SignatureCrypto
				secrets = realm.Secrets
				alias = realm.SignatureAlias
			}
			if realm.SignatureProperties != nil {
				sigProps = *realm.SignatureProperties
			}
		}
	}
	if cryptoHandle == nil || secrets == nil {
		return nil, nil, fmt.Errorf("no signature credentials configured")
	}

	sigAlgorithm := r.resolveAlgorithm(
		p.KeyRequirements.SignatureAlgorithm,
		sigProps.SignatureAlgorithm,
		sigProps.AcceptedSignatureAlgorithms,
		"signature",
	)
	c14nAlgorithm := r.resolveAlgorithm(
		p.KeyRequirements.C14NAlgorithm,
		sigProps.C14NAlgorithm,
		sigProps.AcceptedC14NAlgorithms,
		"c14n",
	)

	if alias == "" {
		alias = cryptoHandle.DefaultIdentifier()
		r.logger.Debug("signature alias not set, using keystore default",
			zap.String("alias", alias))
	}

	password, err := secrets.ResolveSecret(alias, ports.SecretPurposeSignature)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve signing secret for alias %q: %w", alias, err)
	}

	signed, signatureValue, err := r.signer.Sign(a, ports.SigningRequest{
		Alias:              alias,
		Password:           password,
		Crypto:             cryptoHandle,
		UseKeyValue:        sigProps.UseKeyValue,
		C14NAlgorithm:      c14nAlgorithm,
		SignatureAlgorithm: sigAlgorithm,
	})
	if err != nil {
		return nil, nil, err
	}
	a.SetSignatureValue(signatureValue)
	return signed, signatureValue, nil
}

// resolveAlgorithm applies the negotiation rule for one algorithm
// field: a request preference wins only when it appears in the
// accepted-values whitelist, otherwise the configured value is kept
// and the downgrade is logged, not surfaced.
func (r *Renewer) resolveAlgorithm(requested, configured string, accepted []string, kind string) string {
	if requested == "" {
		return configured
	}
	for _, a := range accepted {
		if a == requested {
			return requested
		}
	}
	r.logger.Debug("requested algorithm not accepted, defaulting",
		zap.String("kind", kind),
		zap.String("requested", domain.AlgorithmName(requested)),
		zap.String("using", domain.AlgorithmName(configured)),
	)
	return configured
}
