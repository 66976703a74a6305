//go:build unit

package domain

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

// TestMatchProofOfPossession_CertificateMatch verifies raw certificate
// equality against a signature-type result.
func TestMatchProofOfPossession_CertificateMatch(t *testing.T) {
	cert := &x509.Certificate{Raw: []byte("cert-der")}
	descriptor := KeyDescriptor{Certificate: cert}
	evidence := Evidence{SignedResults: []SignedResult{
		{Action: ActionSignature, Certificate: &x509.Certificate{Raw: []byte("cert-der")}},
	}}
	if !MatchProofOfPossession(descriptor, evidence) {
		t.Error("identical certificate should match")
	}

	evidence.SignedResults[0].Certificate = &x509.Certificate{Raw: []byte("other-der")}
	if MatchProofOfPossession(descriptor, evidence) {
		t.Error("different certificate should not match")
	}
}

// TestMatchProofOfPossession_PublicKeyMatch verifies a bare descriptor
// key matches both a bare evidence key and a certificate-carried key.
func TestMatchProofOfPossession_PublicKeyMatch(t *testing.T) {
	key := testRSAKey(t)
	other := testRSAKey(t)
	descriptor := KeyDescriptor{PublicKey: &key.PublicKey}

	direct := Evidence{SignedResults: []SignedResult{
		{Action: ActionUsernameTokenSignature, PublicKey: &key.PublicKey},
	}}
	if !MatchProofOfPossession(descriptor, direct) {
		t.Error("equal public keys should match")
	}

	viaCert := Evidence{SignedResults: []SignedResult{
		{Action: ActionSignature, Certificate: &x509.Certificate{Raw: []byte("x"), PublicKey: &key.PublicKey}},
	}}
	if !MatchProofOfPossession(descriptor, viaCert) {
		t.Error("certificate-carried key should match")
	}

	mismatch := Evidence{SignedResults: []SignedResult{
		{Action: ActionSignature, PublicKey: &other.PublicKey},
	}}
	if MatchProofOfPossession(descriptor, mismatch) {
		t.Error("different public keys should not match")
	}
}

// TestMatchProofOfPossession_IgnoresNonSignatureActions verifies
// encryption results never count as possession evidence.
func TestMatchProofOfPossession_IgnoresNonSignatureActions(t *testing.T) {
	cert := &x509.Certificate{Raw: []byte("cert-der")}
	evidence := Evidence{SignedResults: []SignedResult{
		{Action: ActionEncryption, Certificate: cert},
	}}
	if MatchProofOfPossession(KeyDescriptor{Certificate: cert}, evidence) {
		t.Error("encryption result should not prove possession")
	}
}

// TestMatchProofOfPossession_TLSPeer verifies the TLS peer chain is an
// independent evidence source.
func TestMatchProofOfPossession_TLSPeer(t *testing.T) {
	key := testRSAKey(t)
	cert := &x509.Certificate{Raw: []byte("peer-der"), PublicKey: &key.PublicKey}

	byCert := KeyDescriptor{Certificate: &x509.Certificate{Raw: []byte("peer-der")}}
	if !MatchProofOfPossession(byCert, Evidence{TLSPeerCertificates: []*x509.Certificate{cert}}) {
		t.Error("TLS peer certificate should match by raw bytes")
	}

	byKey := KeyDescriptor{PublicKey: &key.PublicKey}
	if !MatchProofOfPossession(byKey, Evidence{TLSPeerCertificates: []*x509.Certificate{cert}}) {
		t.Error("TLS peer certificate should match by public key")
	}
}

// TestMatchProofOfPossession_FailsClosed verifies empty descriptors and
// empty evidence never match.
func TestMatchProofOfPossession_FailsClosed(t *testing.T) {
	cert := &x509.Certificate{Raw: []byte("cert-der")}
	if MatchProofOfPossession(KeyDescriptor{}, Evidence{SignedResults: []SignedResult{{Action: ActionSignature, Certificate: cert}}}) {
		t.Error("empty descriptor should never match")
	}
	if MatchProofOfPossession(KeyDescriptor{Certificate: cert}, Evidence{}) {
		t.Error("empty evidence should never match")
	}
	if MatchProofOfPossession(KeyDescriptor{Certificate: cert}, Evidence{TLSPeerCertificates: []*x509.Certificate{nil}}) {
		t.Error("nil peer certificate should be skipped")
	}
	if !(KeyDescriptor{}).Empty() {
		t.Error("zero descriptor should report empty")
	}
}
