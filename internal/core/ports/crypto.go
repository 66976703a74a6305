package ports

import (
	"crypto"
	"crypto/x509"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

// SecretPurpose states what a resolved secret will be used for.
type SecretPurpose int

const (
	// SecretPurposeSignature requests the password protecting a
	// signing key.
	SecretPurposeSignature SecretPurpose = iota + 1
	// SecretPurposeDecryption requests the password protecting a
	// decryption key.
	SecretPurposeDecryption
)

// SecretResolver resolves the secret protecting a keystore alias. It
// replaces callback-array plumbing with a direct synchronous call;
// only one credential is ever requested per renewal.
type SecretResolver interface {
	ResolveSecret(alias string, purpose SecretPurpose) (string, error)
}

// CryptoHandle is a keystore: it maps credential aliases to signing
// key pairs and knows its default identifier.
type CryptoHandle interface {
	// DefaultIdentifier is the alias used when none is configured.
	DefaultIdentifier() string

	// KeyPair resolves an alias and its protecting password to a
	// signing key and certificate.
	KeyPair(alias, password string) (crypto.Signer, *x509.Certificate, error)
}

// SigningRequest is the fully resolved input to a signing operation:
// credential, algorithms, and key-info form, as negotiated by the
// signing coordinator.
type SigningRequest struct {
	Alias              string
	Password           string
	Crypto             CryptoHandle
	UseKeyValue        bool
	C14NAlgorithm      string
	SignatureAlgorithm string
}

// AssertionSigner applies an enveloped XML signature to an assertion.
// It returns the serialized signed assertion and the decoded signature
// value bytes the cache fingerprint is derived from.
type AssertionSigner interface {
	Sign(a *domain.Assertion, req SigningRequest) (signed []byte, signatureValue []byte, err error)
}

// SubjectKeyParser extracts the holder-of-key descriptor from an
// assertion's subject confirmation. An assertion that binds no key
// yields the zero descriptor, not an error.
type SubjectKeyParser interface {
	ParseSubjectKey(a *domain.Assertion, crypto CryptoHandle, secrets SecretResolver) (domain.KeyDescriptor, error)
}

// AssertionCodec parses and serializes assertion payloads in either
// schema variant.
type AssertionCodec interface {
	// Recognize reports whether the payload is an assertion element
	// in one of the supported schema namespaces.
	Recognize(payload []byte) bool

	// Parse decodes a payload into the variant-tagged domain model,
	// capturing any existing signature value.
	Parse(payload []byte) (*domain.Assertion, error)

	// Serialize encodes the populated variant back to XML, without a
	// signature.
	Serialize(a *domain.Assertion) ([]byte, error)
}
