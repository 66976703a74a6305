package ports

import (
	"time"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

// ReceivedTokenProperty is the well-known key under which the original
// received token is attached to the conditions context, so providers
// can base the new window on the token being renewed.
const ReceivedTokenProperty = "sts.renew.received-token"

// ConditionsContext is the renewal call context handed to a conditions
// provider.
type ConditionsContext struct {
	Principal        string
	Realm            string
	AppliesToAddress string

	// KeyRequirements and EncryptionRequirements are the request's
	// negotiated algorithm preferences, available in case a provider
	// keys policy off them.
	KeyRequirements        domain.KeyRequirements
	EncryptionRequirements domain.EncryptionRequirements

	// RequestedLifetime is the validity duration the client asked
	// for; zero means no preference.
	RequestedLifetime time.Duration

	// Additional carries auxiliary properties. During renewal it
	// always holds the original received token under
	// ReceivedTokenProperty.
	Additional map[string]any
}

// ReceivedToken returns the original token being renewed, nil outside
// a renewal call.
func (c ConditionsContext) ReceivedToken() *domain.ReceivedToken {
	tok, _ := c.Additional[ReceivedTokenProperty].(*domain.ReceivedToken)
	return tok
}

// ConditionsProvider is the pluggable policy that computes the validity
// window and assertion-wide conditions for a renewed assertion. Window
// correctness is the provider's contract; the renewer applies the
// output structurally without validating it.
type ConditionsProvider interface {
	Conditions(ctx ConditionsContext) (domain.Conditions, error)
}
