// Package secrets provides secret resolver implementations.
package secrets

import (
	"fmt"

	"github.com/yehevah/saml-sts/internal/core/ports"
)

// StaticSecretResolver resolves alias passwords from a fixed map.
// Suitable for testing and for deployments whose secrets are injected
// at startup.
type StaticSecretResolver struct {
	secrets map[string]string
}

// NewStaticSecretResolver creates a resolver over a copy of the map.
func NewStaticSecretResolver(secrets map[string]string) *StaticSecretResolver {
	copied := make(map[string]string, len(secrets))
	for alias, secret := range secrets {
		copied[alias] = secret
	}
	return &StaticSecretResolver{secrets: copied}
}

// ResolveSecret returns the secret for the alias. The purpose is
// ignored; static secrets do not vary by use.
func (r *StaticSecretResolver) ResolveSecret(alias string, _ ports.SecretPurpose) (string, error) {
	secret, ok := r.secrets[alias]
	if !ok {
		return "", fmt.Errorf("no secret configured for alias %q", alias)
	}
	return secret, nil
}

// Ensure StaticSecretResolver implements the resolver port.
var _ ports.SecretResolver = (*StaticSecretResolver)(nil)
