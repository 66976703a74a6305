package signature

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// SubjectKeyResolver extracts the holder-of-key descriptor from an
// assertion's subject confirmation.
type SubjectKeyResolver struct{}

// NewSubjectKeyResolver creates a subject key resolver.
func NewSubjectKeyResolver() SubjectKeyResolver { return SubjectKeyResolver{} }

// ParseSubjectKey resolves the KeyInfo bound to the assertion's
// subject. An assertion that binds no key yields the zero descriptor,
// not an error; the crypto handle and secret resolver are accepted for
// parity with descriptors that need keystore resolution.
func (SubjectKeyResolver) ParseSubjectKey(
	a *domain.Assertion,
	_ ports.CryptoHandle,
	_ ports.SecretResolver,
) (domain.KeyDescriptor, error) {
	keyInfo := a.SubjectKeyInfo()
	if keyInfo == nil {
		return domain.KeyDescriptor{}, nil
	}

	if len(keyInfo.X509Certificates) > 0 {
		cert, err := parseCertificate(keyInfo.X509Certificates[0])
		if err != nil {
			return domain.KeyDescriptor{}, fmt.Errorf("parse subject certificate: %w", err)
		}
		return domain.KeyDescriptor{Certificate: cert, PublicKey: cert.PublicKey}, nil
	}

	if kv := keyInfo.RSAKeyValue; kv != nil {
		key, err := parseRSAKeyValue(kv)
		if err != nil {
			return domain.KeyDescriptor{}, fmt.Errorf("parse subject key value: %w", err)
		}
		return domain.KeyDescriptor{PublicKey: key}, nil
	}

	return domain.KeyDescriptor{}, nil
}

func parseCertificate(encoded string) (*x509.Certificate, error) {
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(encoded), ""))
	if err != nil {
		return nil, err
	}
	return x509.ParseCertificate(der)
}

func parseRSAKeyValue(kv *domain.RSAKeyValue) (*rsa.PublicKey, error) {
	modulus, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(kv.Modulus), ""))
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	exponent, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(kv.Exponent), ""))
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	if len(modulus) == 0 || len(exponent) == 0 {
		return nil, fmt.Errorf("empty modulus or exponent")
	}
	e := new(big.Int).SetBytes(exponent)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, fmt.Errorf("exponent out of range")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(e.Int64()),
	}, nil
}

// Ensure SubjectKeyResolver implements the parser port.
var _ ports.SubjectKeyParser = SubjectKeyResolver{}
