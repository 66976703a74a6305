// Package assertionxml parses and serializes SAML assertion payloads
// in the two supported schema variants.
package assertionxml

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// Codec recognizes, parses, and serializes assertion elements. It is
// stateless and safe for concurrent use.
type Codec struct{}

// NewCodec creates an assertion codec.
func NewCodec() Codec { return Codec{} }

// Recognize reports whether the payload is an Assertion element in
// either supported schema namespace.
func (Codec) Recognize(payload []byte) bool {
	root, err := rootElement(payload)
	if err != nil {
		return false
	}
	if root.Tag != domain.AssertionElementName {
		return false
	}
	ns := root.NamespaceURI()
	return ns == domain.SAML1Namespace || ns == domain.SAML2Namespace
}

// Parse decodes a payload into the variant-tagged domain model and
// captures the decoded signature value, if the assertion is signed.
func (c Codec) Parse(payload []byte) (*domain.Assertion, error) {
	root, err := rootElement(payload)
	if err != nil {
		return nil, fmt.Errorf("parse assertion XML: %w", err)
	}
	if root.Tag != domain.AssertionElementName {
		return nil, fmt.Errorf("unexpected element %q, want %q", root.Tag, domain.AssertionElementName)
	}

	var assertion *domain.Assertion
	switch root.NamespaceURI() {
	case domain.SAML1Namespace:
		var a domain.SAML1Assertion
		if err := xml.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode SAML 1.1 assertion: %w", err)
		}
		assertion = domain.NewSAML1Assertion(&a)
	case domain.SAML2Namespace:
		var a domain.SAML2Assertion
		if err := xml.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode SAML 2.0 assertion: %w", err)
		}
		assertion = domain.NewSAML2Assertion(&a)
	default:
		return nil, fmt.Errorf("unsupported assertion namespace %q", root.NamespaceURI())
	}

	signature, err := extractSignatureValue(root)
	if err != nil {
		return nil, err
	}
	assertion.SetSignatureValue(signature)
	return assertion, nil
}

// Serialize encodes the populated variant back to XML. The output
// never carries a signature; signing is a separate concern.
func (Codec) Serialize(a *domain.Assertion) ([]byte, error) {
	if s1 := a.SAML1(); s1 != nil {
		return xml.Marshal(s1)
	}
	return xml.Marshal(a.SAML2())
}

func rootElement(payload []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}
	return root, nil
}

// extractSignatureValue returns the decoded ds:SignatureValue of the
// assertion's enveloped signature, nil if the assertion is unsigned.
// Only a signature that is a direct child of the assertion counts;
// signatures of embedded structures are not this assertion's.
func extractSignatureValue(root *etree.Element) ([]byte, error) {
	for _, child := range root.ChildElements() {
		if child.Tag != "Signature" || child.NamespaceURI() != domain.XMLDSigNamespace {
			continue
		}
		value := child.FindElement("./SignatureValue")
		if value == nil {
			return nil, fmt.Errorf("signature element has no SignatureValue")
		}
		text := strings.Join(strings.Fields(value.Text()), "")
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decode signature value: %w", err)
		}
		return decoded, nil
	}
	return nil, nil
}

// Ensure Codec implements the codec port.
var _ ports.AssertionCodec = Codec{}
