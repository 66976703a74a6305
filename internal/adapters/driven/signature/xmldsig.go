// Package signature signs renewed assertions with enveloped XML
// signatures and resolves holder-of-key subject descriptors.
package signature

import (
	"crypto/rsa"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"go.uber.org/zap"

	"github.com/yehevah/saml-sts/internal/adapters/driven/assertionxml"
	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// XMLDsigSigner signs assertions using goxmldsig. It serializes the
// domain model, applies an enveloped signature under the negotiated
// algorithms, and returns the signed bytes plus the decoded signature
// value.
type XMLDsigSigner struct {
	codec  assertionxml.Codec
	logger *zap.Logger
}

// NewXMLDsigSigner creates a signer. A nil logger disables logging.
func NewXMLDsigSigner(logger *zap.Logger) *XMLDsigSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XMLDsigSigner{codec: assertionxml.NewCodec(), logger: logger}
}

// Sign applies an enveloped signature to the assertion.
func (s *XMLDsigSigner) Sign(a *domain.Assertion, req ports.SigningRequest) ([]byte, []byte, error) {
	if req.Crypto == nil {
		return nil, nil, fmt.Errorf("no crypto handle supplied")
	}

	// Any prior signature is discarded; the renewed assertion carries
	// exactly the signature produced here.
	a.StripSignature()
	raw, err := s.codec.Serialize(a)
	if err != nil {
		return nil, nil, fmt.Errorf("serialize assertion: %w", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, nil, fmt.Errorf("reparse assertion: %w", err)
	}
	root := doc.Root()

	key, cert, err := req.Crypto.KeyPair(req.Alias, req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve signing key %q: %w", req.Alias, err)
	}
	keyStore := dsig.TLSCertKeyStore(tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
	})

	ctx := dsig.NewDefaultSigningContext(keyStore)
	ctx.Canonicalizer = canonicalizerFor(req.C14NAlgorithm)
	if a.Version() == domain.SAML11 {
		ctx.IdAttribute = "AssertionID"
	}
	if req.SignatureAlgorithm != "" {
		if err := ctx.SetSignatureMethod(req.SignatureAlgorithm); err != nil {
			return nil, nil, fmt.Errorf("signature algorithm %q: %w", req.SignatureAlgorithm, err)
		}
	}

	signedRoot, err := ctx.SignEnveloped(root)
	if err != nil {
		return nil, nil, fmt.Errorf("sign assertion: %w", err)
	}

	sigElement := childSignature(signedRoot)
	if sigElement == nil {
		return nil, nil, fmt.Errorf("signed assertion carries no signature element")
	}

	if req.UseKeyValue {
		rsaKey, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, nil, fmt.Errorf("key-value signing requires an RSA key")
		}
		if err := rewriteKeyInfoAsKeyValue(sigElement, rsaKey); err != nil {
			return nil, nil, err
		}
	}

	// The schema places the signature right after the issuer, not at
	// the end where enveloped signing appends it.
	repositionSignature(signedRoot, sigElement, a.Version())

	signatureValue, err := signatureValueOf(sigElement)
	if err != nil {
		return nil, nil, err
	}

	signedDoc := etree.NewDocument()
	signedDoc.SetRoot(signedRoot)
	signed, err := signedDoc.WriteToBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("serialize signed assertion: %w", err)
	}

	s.logger.Debug("assertion signed",
		zap.String("token_id", a.ID()),
		zap.String("algorithm", domain.AlgorithmName(req.SignatureAlgorithm)),
		zap.String("c14n", domain.AlgorithmName(req.C14NAlgorithm)),
		zap.String("alias", req.Alias),
	)
	return signed, signatureValue, nil
}

// canonicalizerFor maps a canonicalization URI to a goxmldsig
// canonicalizer, defaulting to exclusive c14n.
func canonicalizerFor(uri string) dsig.Canonicalizer {
	switch uri {
	case domain.C14NExclusiveWithComments:
		return dsig.MakeC14N10ExclusiveWithCommentsCanonicalizerWithPrefixList("")
	case domain.C14N10:
		return dsig.MakeC14N10RecCanonicalizer()
	case domain.C14N10WithComments:
		return dsig.MakeC14N10WithCommentsCanonicalizer()
	case domain.C14N11:
		return dsig.MakeC14N11Canonicalizer()
	default:
		return dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	}
}

// childSignature finds the ds:Signature that is a direct child of the
// assertion element.
func childSignature(root *etree.Element) *etree.Element {
	for _, child := range root.ChildElements() {
		if child.Tag == "Signature" && child.NamespaceURI() == domain.XMLDSigNamespace {
			return child
		}
	}
	return nil
}

// signatureValueOf decodes the ds:SignatureValue text of a signature
// element.
func signatureValueOf(sig *etree.Element) ([]byte, error) {
	for _, child := range sig.ChildElements() {
		if child.Tag != "SignatureValue" {
			continue
		}
		text := strings.Join(strings.Fields(child.Text()), "")
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decode signature value: %w", err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("signature has no SignatureValue element")
}

// rewriteKeyInfoAsKeyValue replaces the X509Data produced by the
// signing library with a raw RSAKeyValue, for deployments that
// distribute keys out of band instead of shipping certificates.
func rewriteKeyInfoAsKeyValue(sig *etree.Element, key *rsa.PublicKey) error {
	var keyInfo *etree.Element
	for _, child := range sig.ChildElements() {
		if child.Tag == "KeyInfo" {
			keyInfo = child
			break
		}
	}
	if keyInfo == nil {
		return fmt.Errorf("signature has no KeyInfo element")
	}
	for _, child := range keyInfo.ChildElements() {
		if child.Tag == "X509Data" {
			keyInfo.RemoveChild(child)
		}
	}

	tag := func(name string) string {
		if keyInfo.Space == "" {
			return name
		}
		return keyInfo.Space + ":" + name
	}
	keyValue := keyInfo.CreateElement(tag("KeyValue"))
	rsaValue := keyValue.CreateElement(tag("RSAKeyValue"))
	modulus := rsaValue.CreateElement(tag("Modulus"))
	modulus.SetText(base64.StdEncoding.EncodeToString(key.N.Bytes()))
	exponent := rsaValue.CreateElement(tag("Exponent"))
	exponent.SetText(base64.StdEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()))
	return nil
}

// repositionSignature moves the signature element to its schema
// position: after Issuer for SAML 2.0, first child for SAML 1.1.
func repositionSignature(root, sig *etree.Element, version domain.Version) {
	root.RemoveChild(sig)
	index := 0
	if version == domain.SAML20 {
		for i, child := range root.ChildElements() {
			if child.Tag == "Issuer" {
				index = i + 1
				break
			}
		}
	}
	root.InsertChildAt(index, sig)
}

// Ensure XMLDsigSigner implements the signer port.
var _ ports.AssertionSigner = (*XMLDsigSigner)(nil)
