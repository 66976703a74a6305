package ports

import "github.com/yehevah/saml-sts/internal/core/domain"

// Realm is a named credential/policy scope overriding the global
// signing defaults. When SignatureCrypto is set, the realm's secret
// resolver and alias replace the global ones as a unit; signature
// properties override independently.
type Realm struct {
	SignatureCrypto     CryptoHandle
	Secrets             SecretResolver
	SignatureAlias      string
	SignatureProperties *domain.SignatureProperties
}
