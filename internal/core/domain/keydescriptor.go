package domain

import (
	"bytes"
	"crypto"
	"crypto/x509"
)

// KeyDescriptor is the key material a holder-of-key assertion binds its
// subject to: a certificate, a bare public key, or neither. The zero
// value is the explicit "no key" descriptor.
type KeyDescriptor struct {
	Certificate *x509.Certificate
	PublicKey   crypto.PublicKey
}

// Empty reports whether the descriptor carries no key material at all.
func (d KeyDescriptor) Empty() bool {
	return d.Certificate == nil && d.PublicKey == nil
}

// SignedAction classifies a verified result from the enclosing message
// exchange. Only signature-producing actions count as proof-of-possession
// evidence.
type SignedAction int

const (
	// ActionSignature is an XML signature over the request.
	ActionSignature SignedAction = iota + 1
	// ActionUsernameTokenSignature is a signature derived from a
	// username token's key.
	ActionUsernameTokenSignature
	// ActionEncryption is listed for completeness; it is never
	// accepted as possession evidence.
	ActionEncryption
)

// SignedResult is one previously-verified security result supplied by
// the enclosing request context, carrying the signer's credentials.
type SignedResult struct {
	Action      SignedAction
	Certificate *x509.Certificate
	PublicKey   crypto.PublicKey
}

// Evidence bundles the two independent sources a caller can prove key
// possession with: verified signed-message results and the transport's
// TLS peer certificate chain.
type Evidence struct {
	SignedResults       []SignedResult
	TLSPeerCertificates []*x509.Certificate
}

// MatchProofOfPossession reports whether the descriptor's key material
// is cryptographically equal to the signer credentials of any
// signature-type result, or to any certificate in the TLS peer chain.
// It fails closed: an empty descriptor or empty evidence never matches.
func MatchProofOfPossession(descriptor KeyDescriptor, evidence Evidence) bool {
	if descriptor.Empty() {
		return false
	}
	for _, result := range evidence.SignedResults {
		if result.Action != ActionSignature && result.Action != ActionUsernameTokenSignature {
			continue
		}
		if descriptor.Certificate != nil && result.Certificate != nil &&
			bytes.Equal(descriptor.Certificate.Raw, result.Certificate.Raw) {
			return true
		}
		if descriptor.PublicKey != nil {
			if result.PublicKey != nil && publicKeysEqual(descriptor.PublicKey, result.PublicKey) {
				return true
			}
			if result.Certificate != nil && publicKeysEqual(descriptor.PublicKey, result.Certificate.PublicKey) {
				return true
			}
		}
	}
	for _, cert := range evidence.TLSPeerCertificates {
		if cert == nil {
			continue
		}
		if descriptor.Certificate != nil && bytes.Equal(descriptor.Certificate.Raw, cert.Raw) {
			return true
		}
		if descriptor.PublicKey != nil && publicKeysEqual(descriptor.PublicKey, cert.PublicKey) {
			return true
		}
	}
	return false
}

// publicKeysEqual compares two public keys by their PKIX encoding.
func publicKeysEqual(a, b crypto.PublicKey) bool {
	if a == nil || b == nil {
		return false
	}
	der1, err := x509.MarshalPKIXPublicKey(a)
	if err != nil {
		return false
	}
	der2, err := x509.MarshalPKIXPublicKey(b)
	if err != nil {
		return false
	}
	return bytes.Equal(der1, der2)
}
