// Command renewdemo exercises the renewal engine end to end: it mints
// a signed holder-of-key assertion, seeds the token cache, renews the
// assertion, and renews the renewed output again to show supersession.
// Usage: go run ./cmd/renewdemo
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"flag"
	"log"
	"math/big"
	"time"

	"go.uber.org/zap"

	samlsts "github.com/yehevah/saml-sts"
	"github.com/yehevah/saml-sts/internal/adapters/driven/signature"
	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

const (
	signingAlias    = "sts-signing"
	signingPassword = "changeit"
	principal       = "alice"
	appliesTo       = "urn:service:payments"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger, err := buildLogger(*verbose)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	stsKey, stsCert, err := generateSelfSignedCert("SAML STS Demo")
	if err != nil {
		log.Fatalf("Failed to generate STS certificate: %v", err)
	}
	_, clientCert, err := generateSelfSignedCert("Demo Client")
	if err != nil {
		log.Fatalf("Failed to generate client certificate: %v", err)
	}

	keystore := samlsts.NewStaticKeyStore(signingAlias)
	keystore.Add(signingAlias, signingPassword, stsKey, stsCert)
	resolver := samlsts.NewStaticSecretResolver(map[string]string{
		signingAlias: signingPassword,
	})

	// Mint the original token the way an issue operation would: sign it
	// and store it in the cache under its signature fingerprint.
	tokenCache := samlsts.NewInMemoryTokenCache()
	original, fingerprint, expires, err := mintToken(keystore, clientCert)
	if err != nil {
		log.Fatalf("Failed to mint original token: %v", err)
	}
	tokenCache.Put(fingerprint, &samlsts.CachedTokenRecord{
		Assertion:  original,
		Expires:    expires,
		Principal:  principal,
		Properties: samlsts.DefaultRenewingFlags().Properties(),
	})
	log.Printf("Minted original token (cached under fingerprint %s...)", fingerprint[:12])

	renewer := samlsts.NewRenewer(samlsts.STSSettings{
		SignatureCrypto:     keystore,
		Secrets:             resolver,
		SignatureAlias:      signingAlias,
		SignatureProperties: samlsts.DefaultSignatureProperties(),
	}, samlsts.WithLogger(logger))

	evidence := samlsts.Evidence{
		SignedResults: []samlsts.SignedResult{
			{Action: domain.ActionSignature, Certificate: clientCert},
		},
	}

	first, err := renewer.Renew(samlsts.Parameters{
		Token:            &samlsts.ReceivedToken{Payload: original, State: samlsts.TokenStateValid},
		Cache:            tokenCache,
		Principal:        principal,
		AppliesToAddress: appliesTo,
		Renewing:         samlsts.DefaultRenewingFlags(),
		Evidence:         evidence,
	})
	if err != nil {
		log.Fatalf("First renewal failed: %v", err)
	}
	log.Printf("Renewed: token %s expires %s", first.TokenID, first.Expires.Format(time.RFC3339))

	// The renewed token is itself renewable; the original's cache
	// entries are gone, so presenting the old bytes would now fail.
	second, err := renewer.Renew(samlsts.Parameters{
		Token:            &samlsts.ReceivedToken{Payload: first.Assertion, State: samlsts.TokenStateValid},
		Cache:            tokenCache,
		Principal:        principal,
		AppliesToAddress: appliesTo,
		Renewing:         samlsts.DefaultRenewingFlags(),
		Evidence:         evidence,
	})
	if err != nil {
		log.Fatalf("Second renewal failed: %v", err)
	}
	log.Printf("Renewed again: token %s expires %s", second.TokenID, second.Expires.Format(time.RFC3339))

	if _, err := renewer.Renew(samlsts.Parameters{
		Token:     &samlsts.ReceivedToken{Payload: original, State: samlsts.TokenStateValid},
		Cache:     tokenCache,
		Principal: principal,
		Renewing:  samlsts.DefaultRenewingFlags(),
		Evidence:  evidence,
	}); err != nil {
		log.Printf("Replaying the original token is rejected as expected: %v", err)
	} else {
		log.Fatalf("Replaying the original token unexpectedly succeeded")
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// mintToken builds and signs a holder-of-key assertion bound to the
// client certificate, returning the signed bytes, the cache key, and
// the expiry.
func mintToken(keystore ports.CryptoHandle, clientCert *x509.Certificate) ([]byte, string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(5 * time.Minute)
	assertion := domain.NewSAML2Assertion(&domain.SAML2Assertion{
		ID:           domain.NewAssertionID(),
		Version:      "2.0",
		IssueInstant: domain.SAMLTime(now),
		Issuer:       "urn:sts:demo",
		Subject: &domain.SAML2Subject{
			NameID: principal,
			SubjectConfirmations: []domain.SAML2SubjectConfirmation{{
				Method: domain.HolderOfKeySAML2,
				SubjectConfirmationData: &domain.SAML2SubjectConfirmationData{
					KeyInfo: &domain.KeyInfo{
						X509Certificates: []string{
							base64.StdEncoding.EncodeToString(clientCert.Raw),
						},
					},
				},
			}},
		},
		Conditions: &domain.SAML2Conditions{
			NotBefore:    domain.SAMLTime(now),
			NotOnOrAfter: domain.SAMLTime(expires),
			AudienceRestrictions: []domain.SAML2AudienceRestriction{
				{Audiences: []string{appliesTo}},
			},
		},
		AuthnStatements: []domain.SAML2AuthnStatement{{
			AuthnInstant: domain.SAMLTime(now),
			AuthnContext: "urn:oasis:names:tc:SAML:2.0:ac:classes:X509",
		}},
	})

	signer := signature.NewXMLDsigSigner(nil)
	signed, signatureValue, err := signer.Sign(assertion, ports.SigningRequest{
		Alias:              signingAlias,
		Password:           signingPassword,
		Crypto:             keystore,
		SignatureAlgorithm: domain.SignatureRSASHA256,
		C14NAlgorithm:      domain.C14NExclusive,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return signed, domain.Fingerprint(signatureValue), expires, nil
}

// generateSelfSignedCert creates an RSA key pair with a short-lived
// self-signed certificate.
func generateSelfSignedCert(commonName string) (*rsa.PrivateKey, *x509.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}
