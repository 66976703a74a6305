package renewer

import (
	"github.com/yehevah/saml-sts/internal/core/domain"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// regenerateConditions stamps a fresh issue instant on the assertion
// and replaces its conditions with the provider's output. The original
// received token is attached to the provider context under the
// well-known auxiliary key so providers can base the new window on it.
// Window correctness is the provider's contract; no validation happens
// here.
func (r *Renewer) regenerateConditions(a *domain.Assertion, token *domain.ReceivedToken, p Parameters) error {
	additional := make(map[string]any, len(p.Additional)+1)
	for k, v := range p.Additional {
		additional[k] = v
	}
	additional[ports.ReceivedTokenProperty] = token

	conditions, err := r.conditions.Conditions(ports.ConditionsContext{
		Principal:              p.Principal,
		Realm:                  p.Realm,
		AppliesToAddress:       p.AppliesToAddress,
		KeyRequirements:        p.KeyRequirements,
		EncryptionRequirements: p.EncryptionRequirements,
		RequestedLifetime:      p.RequestedLifetime,
		Additional:             additional,
	})
	if err != nil {
		return err
	}

	a.SetIssueInstant(r.now())
	a.ApplyConditions(conditions)
	return nil
}
