package domain

import (
	"encoding/xml"
	"errors"
	"time"
)

// SAML schema namespaces recognized by the renewer.
const (
	SAML1Namespace = "urn:oasis:names:tc:SAML:1.0:assertion"
	SAML2Namespace = "urn:oasis:names:tc:SAML:2.0:assertion"

	// XMLDSigNamespace is the XML Signature namespace used for KeyInfo
	// inside holder-of-key subject confirmations.
	XMLDSigNamespace = "http://www.w3.org/2000/09/xmldsig#"
)

// AssertionElementName is the local name of an assertion element in
// either schema variant.
const AssertionElementName = "Assertion"

// HolderOfKeySAML1 and HolderOfKeySAML2 are the holder-of-key subject
// confirmation method URIs for the two schema variants.
const (
	HolderOfKeySAML1 = "urn:oasis:names:tc:SAML:1.0:cm:holder-of-key"
	HolderOfKeySAML2 = "urn:oasis:names:tc:SAML:2.0:cm:holder-of-key"
)

// Version tags the schema variant an assertion is carried in.
type Version int

const (
	// SAML11 is the SAML 1.1 assertion schema (variant A).
	SAML11 Version = iota + 1
	// SAML20 is the SAML 2.0 assertion schema (variant B).
	SAML20
)

// String returns a short name for the schema variant.
func (v Version) String() string {
	switch v {
	case SAML11:
		return "saml1.1"
	case SAML20:
		return "saml2.0"
	default:
		return "unknown"
	}
}

// ErrNoConditions is returned when an assertion carries no conditions
// element and a validity window is required.
var ErrNoConditions = errors.New("assertion has no conditions")

// ValidityWindow is the not-before/not-after pair stamped on an
// assertion's conditions.
type ValidityWindow struct {
	NotBefore    time.Time
	NotOnOrAfter time.Time
}

// Valid reports whether the window is well-formed (not-before does not
// follow not-after).
func (w ValidityWindow) Valid() bool {
	return !w.NotBefore.After(w.NotOnOrAfter)
}

// Conditions is the assertion-wide output of a conditions provider: a
// fresh validity window plus the audience URIs the renewed assertion is
// restricted to. An empty audience list leaves the renewed assertion
// without an audience restriction.
type Conditions struct {
	Window       ValidityWindow
	AudienceURIs []string
}

// Assertion is the in-memory representation of the SAML content being
// renewed. Exactly one of the two schema-variant branches is populated;
// every operation dispatches on the variant tag. The zero value is not
// usable - construct through NewSAML1Assertion or NewSAML2Assertion.
type Assertion struct {
	saml1 *SAML1Assertion
	saml2 *SAML2Assertion

	// signatureValue holds the decoded ds:SignatureValue bytes of the
	// assertion's current signature, empty if unsigned.
	signatureValue []byte
}

// NewSAML1Assertion wraps a SAML 1.1 assertion document.
func NewSAML1Assertion(a *SAML1Assertion) *Assertion {
	return &Assertion{saml1: a}
}

// NewSAML2Assertion wraps a SAML 2.0 assertion document.
func NewSAML2Assertion(a *SAML2Assertion) *Assertion {
	return &Assertion{saml2: a}
}

// Version returns the schema variant tag.
func (a *Assertion) Version() Version {
	if a.saml1 != nil {
		return SAML11
	}
	return SAML20
}

// SAML1 returns the SAML 1.1 branch, nil unless Version() == SAML11.
func (a *Assertion) SAML1() *SAML1Assertion { return a.saml1 }

// SAML2 returns the SAML 2.0 branch, nil unless Version() == SAML20.
func (a *Assertion) SAML2() *SAML2Assertion { return a.saml2 }

// ID returns the assertion identifier of the populated variant.
func (a *Assertion) ID() string {
	if a.saml1 != nil {
		return a.saml1.AssertionID
	}
	return a.saml2.ID
}

// Reidentify assigns a freshly generated identifier to the assertion
// and returns the identifier it replaced.
func (a *Assertion) Reidentify() string {
	if a.saml1 != nil {
		old := a.saml1.AssertionID
		a.saml1.AssertionID = NewAssertionID()
		return old
	}
	old := a.saml2.ID
	a.saml2.ID = NewAssertionID()
	return old
}

// SetIssueInstant stamps a new issue instant on the populated variant.
func (a *Assertion) SetIssueInstant(t time.Time) {
	if a.saml1 != nil {
		a.saml1.IssueInstant = SAMLTime(t)
		return
	}
	a.saml2.IssueInstant = SAMLTime(t)
}

// Window extracts the validity window from the populated variant's
// conditions. Returns ErrNoConditions if the assertion carries none.
func (a *Assertion) Window() (ValidityWindow, error) {
	if a.saml1 != nil {
		if a.saml1.Conditions == nil {
			return ValidityWindow{}, ErrNoConditions
		}
		return ValidityWindow{
			NotBefore:    a.saml1.Conditions.NotBefore.Time(),
			NotOnOrAfter: a.saml1.Conditions.NotOnOrAfter.Time(),
		}, nil
	}
	if a.saml2.Conditions == nil {
		return ValidityWindow{}, ErrNoConditions
	}
	return ValidityWindow{
		NotBefore:    a.saml2.Conditions.NotBefore.Time(),
		NotOnOrAfter: a.saml2.Conditions.NotOnOrAfter.Time(),
	}, nil
}

// ApplyConditions replaces the populated variant's conditions element
// with one built from the provider output. Audience URIs, when present,
// are collected into a single restriction entry, so the renewed
// assertion is scoped to the relying party the renewal was asked for.
func (a *Assertion) ApplyConditions(c Conditions) {
	if a.saml1 != nil {
		cond := &SAML1Conditions{
			NotBefore:    SAMLTime(c.Window.NotBefore),
			NotOnOrAfter: SAMLTime(c.Window.NotOnOrAfter),
		}
		if len(c.AudienceURIs) > 0 {
			cond.AudienceRestrictionConditions = []SAML1AudienceRestrictionCondition{
				{Audiences: append([]string(nil), c.AudienceURIs...)},
			}
		}
		a.saml1.Conditions = cond
		return
	}
	cond := &SAML2Conditions{
		NotBefore:    SAMLTime(c.Window.NotBefore),
		NotOnOrAfter: SAMLTime(c.Window.NotOnOrAfter),
	}
	if len(c.AudienceURIs) > 0 {
		cond.AudienceRestrictions = []SAML2AudienceRestriction{
			{Audiences: append([]string(nil), c.AudienceURIs...)},
		}
	}
	a.saml2.Conditions = cond
}

// SubjectKeyInfo returns the holder-of-key KeyInfo attached to the
// populated variant's subject confirmation, or nil if the assertion
// binds no key.
func (a *Assertion) SubjectKeyInfo() *KeyInfo {
	if a.saml1 != nil {
		for _, st := range a.saml1.AuthenticationStatements {
			if st.Subject != nil && st.Subject.SubjectConfirmation != nil {
				if ki := st.Subject.SubjectConfirmation.KeyInfo; ki != nil {
					return ki
				}
			}
		}
		for _, st := range a.saml1.AttributeStatements {
			if st.Subject != nil && st.Subject.SubjectConfirmation != nil {
				if ki := st.Subject.SubjectConfirmation.KeyInfo; ki != nil {
					return ki
				}
			}
		}
		return nil
	}
	if a.saml2.Subject == nil {
		return nil
	}
	for _, sc := range a.saml2.Subject.SubjectConfirmations {
		if sc.SubjectConfirmationData != nil && sc.SubjectConfirmationData.KeyInfo != nil {
			return sc.SubjectConfirmationData.KeyInfo
		}
	}
	return nil
}

// SignatureValue returns the decoded signature bytes of the assertion's
// current signature, empty if the assertion is unsigned.
func (a *Assertion) SignatureValue() []byte { return a.signatureValue }

// SetSignatureValue records the decoded signature bytes after signing.
func (a *Assertion) SetSignatureValue(sig []byte) { a.signatureValue = sig }

// StripSignature discards any signature carried by the assertion, used
// when renewal is configured not to re-sign.
func (a *Assertion) StripSignature() { a.signatureValue = nil }

// Clone returns a deep copy of the assertion. The clone shares nothing
// with the original, so the received token is never mutated by renewal.
func (a *Assertion) Clone() *Assertion {
	out := &Assertion{}
	if len(a.signatureValue) > 0 {
		out.signatureValue = append([]byte(nil), a.signatureValue...)
	}
	if a.saml1 != nil {
		out.saml1 = a.saml1.clone()
		return out
	}
	out.saml2 = a.saml2.clone()
	return out
}

// SAMLTime marshals as an xs:dateTime attribute in UTC, the form SAML
// processors expect. The zero value is omitted.
type SAMLTime time.Time

const samlTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Time returns the underlying time value.
func (t SAMLTime) Time() time.Time { return time.Time(t) }

// IsZero reports whether the underlying time is the zero instant.
func (t SAMLTime) IsZero() bool { return time.Time(t).IsZero() }

// MarshalXMLAttr implements xml.MarshalerAttr.
func (t SAMLTime) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	if t.IsZero() {
		return xml.Attr{}, nil
	}
	return xml.Attr{Name: name, Value: time.Time(t).UTC().Format(samlTimeFormat)}, nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr. Both millisecond and
// plain xs:dateTime forms are accepted.
func (t *SAMLTime) UnmarshalXMLAttr(attr xml.Attr) error {
	if attr.Value == "" {
		*t = SAMLTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, attr.Value)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, attr.Value)
		if err != nil {
			return err
		}
	}
	*t = SAMLTime(parsed)
	return nil
}

// KeyInfo is the subset of ds:KeyInfo a holder-of-key confirmation can
// carry: certificates, or a raw RSA key value.
type KeyInfo struct {
	X509Certificates []string     `xml:"http://www.w3.org/2000/09/xmldsig# X509Data>X509Certificate"`
	RSAKeyValue      *RSAKeyValue `xml:"http://www.w3.org/2000/09/xmldsig# KeyValue>RSAKeyValue"`
}

// RSAKeyValue holds a base64 modulus/exponent pair.
type RSAKeyValue struct {
	Modulus  string `xml:"http://www.w3.org/2000/09/xmldsig# Modulus"`
	Exponent string `xml:"http://www.w3.org/2000/09/xmldsig# Exponent"`
}

func (k *KeyInfo) clone() *KeyInfo {
	if k == nil {
		return nil
	}
	out := &KeyInfo{
		X509Certificates: append([]string(nil), k.X509Certificates...),
	}
	if k.RSAKeyValue != nil {
		kv := *k.RSAKeyValue
		out.RSAKeyValue = &kv
	}
	return out
}

// SAML2Assertion is the variant-B (SAML 2.0) assertion document.
type SAML2Assertion struct {
	XMLName      xml.Name `xml:"urn:oasis:names:tc:SAML:2.0:assertion Assertion"`
	ID           string   `xml:"ID,attr"`
	Version      string   `xml:"Version,attr"`
	IssueInstant SAMLTime `xml:"IssueInstant,attr"`
	Issuer       string   `xml:"urn:oasis:names:tc:SAML:2.0:assertion Issuer"`

	Subject             *SAML2Subject             `xml:"urn:oasis:names:tc:SAML:2.0:assertion Subject"`
	Conditions          *SAML2Conditions          `xml:"urn:oasis:names:tc:SAML:2.0:assertion Conditions"`
	AuthnStatements     []SAML2AuthnStatement     `xml:"urn:oasis:names:tc:SAML:2.0:assertion AuthnStatement"`
	AttributeStatements []SAML2AttributeStatement `xml:"urn:oasis:names:tc:SAML:2.0:assertion AttributeStatement"`
}

// SAML2Subject carries the subject name and its confirmations.
type SAML2Subject struct {
	NameID               string                     `xml:"urn:oasis:names:tc:SAML:2.0:assertion NameID"`
	SubjectConfirmations []SAML2SubjectConfirmation `xml:"urn:oasis:names:tc:SAML:2.0:assertion SubjectConfirmation"`
}

// SAML2SubjectConfirmation is a single subject confirmation; for
// holder-of-key assertions the confirmation data carries a KeyInfo.
type SAML2SubjectConfirmation struct {
	Method                  string                        `xml:"Method,attr"`
	SubjectConfirmationData *SAML2SubjectConfirmationData `xml:"urn:oasis:names:tc:SAML:2.0:assertion SubjectConfirmationData"`
}

// SAML2SubjectConfirmationData holds the optional holder-of-key KeyInfo.
type SAML2SubjectConfirmationData struct {
	KeyInfo *KeyInfo `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo"`
}

// SAML2Conditions carries the validity window and audience restrictions.
type SAML2Conditions struct {
	NotBefore            SAMLTime                   `xml:"NotBefore,attr"`
	NotOnOrAfter         SAMLTime                   `xml:"NotOnOrAfter,attr"`
	AudienceRestrictions []SAML2AudienceRestriction `xml:"urn:oasis:names:tc:SAML:2.0:assertion AudienceRestriction"`
}

// SAML2AudienceRestriction holds zero or more audience URIs.
type SAML2AudienceRestriction struct {
	Audiences []string `xml:"urn:oasis:names:tc:SAML:2.0:assertion Audience"`
}

// SAML2AuthnStatement records the authentication event; the renewer
// carries it through unchanged.
type SAML2AuthnStatement struct {
	AuthnInstant SAMLTime `xml:"AuthnInstant,attr"`
	SessionIndex string   `xml:"SessionIndex,attr,omitempty"`
	AuthnContext string   `xml:"urn:oasis:names:tc:SAML:2.0:assertion AuthnContext>AuthnContextClassRef"`
}

// SAML2AttributeStatement carries subject attributes through renewal.
type SAML2AttributeStatement struct {
	Attributes []SAML2Attribute `xml:"urn:oasis:names:tc:SAML:2.0:assertion Attribute"`
}

// SAML2Attribute is a named attribute with one or more values.
type SAML2Attribute struct {
	Name   string   `xml:"Name,attr"`
	Values []string `xml:"urn:oasis:names:tc:SAML:2.0:assertion AttributeValue"`
}

func (a *SAML2Assertion) clone() *SAML2Assertion {
	out := *a
	if a.Subject != nil {
		subj := *a.Subject
		subj.SubjectConfirmations = make([]SAML2SubjectConfirmation, len(a.Subject.SubjectConfirmations))
		for i, sc := range a.Subject.SubjectConfirmations {
			clone := sc
			if sc.SubjectConfirmationData != nil {
				data := *sc.SubjectConfirmationData
				data.KeyInfo = sc.SubjectConfirmationData.KeyInfo.clone()
				clone.SubjectConfirmationData = &data
			}
			subj.SubjectConfirmations[i] = clone
		}
		out.Subject = &subj
	}
	if a.Conditions != nil {
		cond := *a.Conditions
		cond.AudienceRestrictions = make([]SAML2AudienceRestriction, len(a.Conditions.AudienceRestrictions))
		for i, ar := range a.Conditions.AudienceRestrictions {
			cond.AudienceRestrictions[i] = SAML2AudienceRestriction{
				Audiences: append([]string(nil), ar.Audiences...),
			}
		}
		out.Conditions = &cond
	}
	out.AuthnStatements = append([]SAML2AuthnStatement(nil), a.AuthnStatements...)
	out.AttributeStatements = make([]SAML2AttributeStatement, len(a.AttributeStatements))
	for i, st := range a.AttributeStatements {
		attrs := make([]SAML2Attribute, len(st.Attributes))
		for j, attr := range st.Attributes {
			attrs[j] = SAML2Attribute{
				Name:   attr.Name,
				Values: append([]string(nil), attr.Values...),
			}
		}
		out.AttributeStatements[i] = SAML2AttributeStatement{Attributes: attrs}
	}
	return &out
}

// SAML1Assertion is the variant-A (SAML 1.1) assertion document.
type SAML1Assertion struct {
	XMLName      xml.Name `xml:"urn:oasis:names:tc:SAML:1.0:assertion Assertion"`
	AssertionID  string   `xml:"AssertionID,attr"`
	MajorVersion string   `xml:"MajorVersion,attr"`
	MinorVersion string   `xml:"MinorVersion,attr"`
	Issuer       string   `xml:"Issuer,attr"`
	IssueInstant SAMLTime `xml:"IssueInstant,attr"`

	Conditions               *SAML1Conditions               `xml:"urn:oasis:names:tc:SAML:1.0:assertion Conditions"`
	AuthenticationStatements []SAML1AuthenticationStatement `xml:"urn:oasis:names:tc:SAML:1.0:assertion AuthenticationStatement"`
	AttributeStatements      []SAML1AttributeStatement      `xml:"urn:oasis:names:tc:SAML:1.0:assertion AttributeStatement"`
}

// SAML1Conditions carries the validity window and audience restriction
// conditions of a SAML 1.1 assertion.
type SAML1Conditions struct {
	NotBefore                     SAMLTime                            `xml:"NotBefore,attr"`
	NotOnOrAfter                  SAMLTime                            `xml:"NotOnOrAfter,attr"`
	AudienceRestrictionConditions []SAML1AudienceRestrictionCondition `xml:"urn:oasis:names:tc:SAML:1.0:assertion AudienceRestrictionCondition"`
}

// SAML1AudienceRestrictionCondition holds zero or more audience URIs.
type SAML1AudienceRestrictionCondition struct {
	Audiences []string `xml:"urn:oasis:names:tc:SAML:1.0:assertion Audience"`
}

// SAML1Subject carries the subject name identifier and confirmation.
type SAML1Subject struct {
	NameIdentifier      string                    `xml:"urn:oasis:names:tc:SAML:1.0:assertion NameIdentifier"`
	SubjectConfirmation *SAML1SubjectConfirmation `xml:"urn:oasis:names:tc:SAML:1.0:assertion SubjectConfirmation"`
}

// SAML1SubjectConfirmation lists confirmation methods and the
// holder-of-key KeyInfo when one is bound.
type SAML1SubjectConfirmation struct {
	ConfirmationMethods []string `xml:"urn:oasis:names:tc:SAML:1.0:assertion ConfirmationMethod"`
	KeyInfo             *KeyInfo `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo"`
}

// SAML1AuthenticationStatement records the authentication event.
type SAML1AuthenticationStatement struct {
	AuthenticationMethod  string        `xml:"AuthenticationMethod,attr"`
	AuthenticationInstant SAMLTime      `xml:"AuthenticationInstant,attr"`
	Subject               *SAML1Subject `xml:"urn:oasis:names:tc:SAML:1.0:assertion Subject"`
}

// SAML1AttributeStatement carries subject attributes through renewal.
type SAML1AttributeStatement struct {
	Subject    *SAML1Subject    `xml:"urn:oasis:names:tc:SAML:1.0:assertion Subject"`
	Attributes []SAML1Attribute `xml:"urn:oasis:names:tc:SAML:1.0:assertion Attribute"`
}

// SAML1Attribute is a named attribute with one or more values.
type SAML1Attribute struct {
	AttributeName      string   `xml:"AttributeName,attr"`
	AttributeNamespace string   `xml:"AttributeNamespace,attr"`
	Values             []string `xml:"urn:oasis:names:tc:SAML:1.0:assertion AttributeValue"`
}

func (s *SAML1Subject) clone() *SAML1Subject {
	if s == nil {
		return nil
	}
	out := *s
	if s.SubjectConfirmation != nil {
		sc := *s.SubjectConfirmation
		sc.ConfirmationMethods = append([]string(nil), s.SubjectConfirmation.ConfirmationMethods...)
		sc.KeyInfo = s.SubjectConfirmation.KeyInfo.clone()
		out.SubjectConfirmation = &sc
	}
	return &out
}

func (a *SAML1Assertion) clone() *SAML1Assertion {
	out := *a
	if a.Conditions != nil {
		cond := *a.Conditions
		cond.AudienceRestrictionConditions = make([]SAML1AudienceRestrictionCondition, len(a.Conditions.AudienceRestrictionConditions))
		for i, arc := range a.Conditions.AudienceRestrictionConditions {
			cond.AudienceRestrictionConditions[i] = SAML1AudienceRestrictionCondition{
				Audiences: append([]string(nil), arc.Audiences...),
			}
		}
		out.Conditions = &cond
	}
	out.AuthenticationStatements = make([]SAML1AuthenticationStatement, len(a.AuthenticationStatements))
	for i, st := range a.AuthenticationStatements {
		clone := st
		clone.Subject = st.Subject.clone()
		out.AuthenticationStatements[i] = clone
	}
	out.AttributeStatements = make([]SAML1AttributeStatement, len(a.AttributeStatements))
	for i, st := range a.AttributeStatements {
		clone := SAML1AttributeStatement{Subject: st.Subject.clone()}
		clone.Attributes = make([]SAML1Attribute, len(st.Attributes))
		for j, attr := range st.Attributes {
			clone.Attributes[j] = SAML1Attribute{
				AttributeName:      attr.AttributeName,
				AttributeNamespace: attr.AttributeNamespace,
				Values:             append([]string(nil), attr.Values...),
			}
		}
		out.AttributeStatements[i] = clone
	}
	return &out
}
