//go:build unit

package signature

import (
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

func hokAssertion(keyInfo *domain.KeyInfo) *domain.Assertion {
	return domain.NewSAML2Assertion(&domain.SAML2Assertion{
		ID:      "_hok",
		Version: "2.0",
		Subject: &domain.SAML2Subject{
			NameID: "alice",
			SubjectConfirmations: []domain.SAML2SubjectConfirmation{{
				Method:                  domain.HolderOfKeySAML2,
				SubjectConfirmationData: &domain.SAML2SubjectConfirmationData{KeyInfo: keyInfo},
			}},
		},
	})
}

// TestSubjectKeyResolver_Certificate verifies a certificate-carrying
// KeyInfo resolves to a descriptor with both the certificate and its
// public key.
func TestSubjectKeyResolver_Certificate(t *testing.T) {
	_, cert := selfSignedPair(t)
	a := hokAssertion(&domain.KeyInfo{
		X509Certificates: []string{base64.StdEncoding.EncodeToString(cert.Raw)},
	})

	descriptor, err := NewSubjectKeyResolver().ParseSubjectKey(a, nil, nil)
	if err != nil {
		t.Fatalf("ParseSubjectKey failed: %v", err)
	}
	if descriptor.Certificate == nil || !descriptor.Certificate.Equal(cert) {
		t.Error("certificate not resolved")
	}
	if descriptor.PublicKey == nil {
		t.Error("certificate public key not resolved")
	}
}

// TestSubjectKeyResolver_RSAKeyValue verifies a raw RSA key value
// resolves to a bare public key descriptor.
func TestSubjectKeyResolver_RSAKeyValue(t *testing.T) {
	key, _ := selfSignedPair(t)
	a := hokAssertion(&domain.KeyInfo{
		RSAKeyValue: &domain.RSAKeyValue{
			Modulus:  base64.StdEncoding.EncodeToString(key.N.Bytes()),
			Exponent: base64.StdEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		},
	})

	descriptor, err := NewSubjectKeyResolver().ParseSubjectKey(a, nil, nil)
	if err != nil {
		t.Fatalf("ParseSubjectKey failed: %v", err)
	}
	if descriptor.Certificate != nil {
		t.Error("key value descriptor should carry no certificate")
	}
	if descriptor.PublicKey == nil {
		t.Fatal("public key not resolved")
	}
	if !domain.MatchProofOfPossession(descriptor, domain.Evidence{
		SignedResults: []domain.SignedResult{{Action: domain.ActionSignature, PublicKey: &key.PublicKey}},
	}) {
		t.Error("resolved key should equal the original")
	}
}

// TestSubjectKeyResolver_NoKey verifies an assertion binding no key
// yields the zero descriptor without error.
func TestSubjectKeyResolver_NoKey(t *testing.T) {
	descriptor, err := NewSubjectKeyResolver().ParseSubjectKey(hokAssertion(nil), nil, nil)
	if err != nil {
		t.Fatalf("ParseSubjectKey failed: %v", err)
	}
	if !descriptor.Empty() {
		t.Error("descriptor should be empty")
	}
}

// TestSubjectKeyResolver_MalformedKeyInfo verifies malformed key
// material is an error, not an empty descriptor.
func TestSubjectKeyResolver_MalformedKeyInfo(t *testing.T) {
	cases := []*domain.KeyInfo{
		{X509Certificates: []string{"!!not-base64!!"}},
		{X509Certificates: []string{base64.StdEncoding.EncodeToString([]byte("not-der"))}},
		{RSAKeyValue: &domain.RSAKeyValue{Modulus: "", Exponent: ""}},
		{RSAKeyValue: &domain.RSAKeyValue{Modulus: "AQAB", Exponent: "!!"}},
	}
	for i, keyInfo := range cases {
		if _, err := NewSubjectKeyResolver().ParseSubjectKey(hokAssertion(keyInfo), nil, nil); err == nil {
			t.Errorf("case %d: malformed KeyInfo should fail", i)
		}
	}
}
