package domain

// XML DSig signature algorithm URIs the renewer knows about.
const (
	SignatureRSASHA1   = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	SignatureRSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	SignatureRSASHA384 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha384"
	SignatureRSASHA512 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha512"
)

// Canonicalization algorithm URIs.
const (
	C14NExclusive             = "http://www.w3.org/2001/10/xml-exc-c14n#"
	C14NExclusiveWithComments = "http://www.w3.org/2001/10/xml-exc-c14n#WithComments"
	C14N10                    = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	C14N10WithComments        = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315#WithComments"
	C14N11                    = "http://www.w3.org/2006/12/xml-c14n11"
)

// algorithmURIToName maps algorithm URIs to human-readable names for
// log output. Unrecognized URIs are logged as-is.
var algorithmURIToName = map[string]string{
	SignatureRSASHA1:   "RSA-SHA1",
	SignatureRSASHA256: "RSA-SHA256",
	SignatureRSASHA384: "RSA-SHA384",
	SignatureRSASHA512: "RSA-SHA512",
	C14NExclusive:      "EXC-C14N",
	C14N10:             "C14N-1.0",
	C14N11:             "C14N-1.1",
}

// AlgorithmName converts an algorithm URI to a human-readable name,
// returning the URI unchanged if not recognized.
func AlgorithmName(uri string) string {
	if name, ok := algorithmURIToName[uri]; ok {
		return name
	}
	return uri
}

// SignatureProperties configure how renewed assertions are signed:
// the default algorithms, the whitelists a request-negotiated
// preference is checked against, and whether the signature carries a
// raw key value instead of certificate data.
type SignatureProperties struct {
	SignatureAlgorithm          string
	AcceptedSignatureAlgorithms []string
	C14NAlgorithm               string
	AcceptedC14NAlgorithms      []string
	UseKeyValue                 bool
}

// DefaultSignatureProperties signs with RSA-SHA256 over exclusive
// canonicalization and accepts the common RSA algorithm family.
func DefaultSignatureProperties() SignatureProperties {
	return SignatureProperties{
		SignatureAlgorithm: SignatureRSASHA256,
		AcceptedSignatureAlgorithms: []string{
			SignatureRSASHA1,
			SignatureRSASHA256,
			SignatureRSASHA384,
			SignatureRSASHA512,
		},
		C14NAlgorithm: C14NExclusive,
		AcceptedC14NAlgorithms: []string{
			C14NExclusive,
			C14NExclusiveWithComments,
			C14N10,
			C14N11,
		},
	}
}

// KeyRequirements carry the request-negotiated algorithm preferences.
// Empty fields mean the caller expressed no preference.
type KeyRequirements struct {
	SignatureAlgorithm string
	C14NAlgorithm      string
}

// EncryptionRequirements carry the request's encryption preferences.
// Renewal never encrypts, but the preferences travel with the call so
// conditions providers can key policy off them. Empty fields mean the
// caller expressed no preference.
type EncryptionRequirements struct {
	EncryptionAlgorithm string
	KeyWrapAlgorithm    string
}
