// Package samlsts is the renewal engine of a SAML security-token
// service: given a previously issued identity assertion (valid or
// recently expired), it decides whether renewal is permitted,
// regenerates the assertion's validity window, re-signs it, and
// atomically replaces the cached record.
//
// The root package re-exports the public surface; implementations live
// under internal/.
package samlsts

import (
	"github.com/yehevah/saml-sts/internal/adapters/driven/assertionxml"
	"github.com/yehevah/saml-sts/internal/adapters/driven/cache"
	"github.com/yehevah/saml-sts/internal/adapters/driven/conditions"
	"github.com/yehevah/saml-sts/internal/adapters/driven/secrets"
	"github.com/yehevah/saml-sts/internal/adapters/driven/signature"
	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
	"github.com/yehevah/saml-sts/internal/core/renewer"
)

// Re-export the renewer surface.
type (
	Renewer      = renewer.Renewer
	Parameters   = renewer.Parameters
	Response     = renewer.Response
	STSSettings  = renewer.STSSettings
	Dependencies = renewer.Dependencies
	Option       = renewer.Option
)

// Re-export the domain model callers interact with.
type (
	ReceivedToken          = domain.ReceivedToken
	TokenState             = domain.TokenState
	CachedTokenRecord      = domain.CachedTokenRecord
	RenewingFlags          = domain.RenewingFlags
	KeyRequirements        = domain.KeyRequirements
	EncryptionRequirements = domain.EncryptionRequirements
	SignatureProperties    = domain.SignatureProperties
	ValidityWindow         = domain.ValidityWindow
	Evidence               = domain.Evidence
	SignedResult           = domain.SignedResult
	KeyDescriptor          = domain.KeyDescriptor
)

// Re-export the driven ports and their bundled implementations.
type (
	TokenCache         = ports.TokenCache
	ConditionsProvider = ports.ConditionsProvider
	CryptoHandle       = ports.CryptoHandle
	SecretResolver     = ports.SecretResolver
	Realm              = ports.Realm
	AssertionCodec     = ports.AssertionCodec
	AssertionSigner    = ports.AssertionSigner
	SubjectKeyParser   = ports.SubjectKeyParser
)

// Token lifecycle states.
const (
	TokenStateNone      = domain.TokenStateNone
	TokenStateValid     = domain.TokenStateValid
	TokenStateInvalid   = domain.TokenStateInvalid
	TokenStateCancelled = domain.TokenStateCancelled
	TokenStateExpired   = domain.TokenStateExpired
)

// Renewal-policy property keys on cached records.
const (
	PropertyRenewalAllowed            = domain.PropertyRenewalAllowed
	PropertyRenewalAllowedAfterExpiry = domain.PropertyRenewalAllowedAfterExpiry
)

// Renewer configuration options.
var (
	WithSignToken               = renewer.WithSignToken
	WithVerifyProofOfPossession = renewer.WithVerifyProofOfPossession
	WithAllowRenewalAfterExpiry = renewer.WithAllowRenewalAfterExpiry
	WithMaxExpiry               = renewer.WithMaxExpiry
	WithRealms                  = renewer.WithRealms
	WithConditionsProvider      = renewer.WithConditionsProvider
	WithLogger                  = renewer.WithLogger
	WithMetrics                 = renewer.WithMetrics
)

// Bundled adapter constructors.
var (
	NewInMemoryTokenCache      = cache.NewInMemoryTokenCache
	NewDefaultProvider         = conditions.NewDefaultProvider
	NewStaticKeyStore          = signature.NewStaticKeyStore
	NewStaticSecretResolver    = secrets.NewStaticSecretResolver
	NewXMLDsigSigner           = signature.NewXMLDsigSigner
	NewSubjectKeyResolver      = signature.NewSubjectKeyResolver
	NewAssertionCodec          = assertionxml.NewCodec
	DefaultSignatureProperties = domain.DefaultSignatureProperties
	DefaultRenewingFlags       = domain.DefaultRenewingFlags
	Fingerprint                = domain.Fingerprint
)

// NewRenewer builds a renewer over the bundled adapters: the XML
// codec, the xmldsig signer, the subject-key resolver, and the default
// conditions provider.
func NewRenewer(sts STSSettings, opts ...Option) *Renewer {
	deps := renewer.Dependencies{
		Codec:       assertionxml.NewCodec(),
		Signer:      signature.NewXMLDsigSigner(nil),
		SubjectKeys: signature.NewSubjectKeyResolver(),
		Conditions:  conditions.NewDefaultProvider(),
	}
	return renewer.New(deps, sts, opts...)
}

// NewRenewerWithDependencies builds a renewer over custom collaborators
// instead of the bundled adapters.
func NewRenewerWithDependencies(deps Dependencies, sts STSSettings, opts ...Option) *Renewer {
	return renewer.New(deps, sts, opts...)
}
