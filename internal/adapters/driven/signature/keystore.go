package signature

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/yehevah/saml-sts/internal/core/ports"
)

// StaticKeyStore is an in-memory CryptoHandle mapping credential
// aliases to key pairs. Suitable for testing and for deployments whose
// keys are loaded once at startup.
type StaticKeyStore struct {
	mu           sync.RWMutex
	defaultAlias string
	entries      map[string]keyEntry
}

type keyEntry struct {
	key      crypto.Signer
	cert     *x509.Certificate
	password string
}

// NewStaticKeyStore creates a keystore whose DefaultIdentifier is the
// given alias.
func NewStaticKeyStore(defaultAlias string) *StaticKeyStore {
	return &StaticKeyStore{
		defaultAlias: defaultAlias,
		entries:      make(map[string]keyEntry),
	}
}

// Add registers a key pair under an alias, protected by a password.
func (s *StaticKeyStore) Add(alias, password string, key crypto.Signer, cert *x509.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[alias] = keyEntry{key: key, cert: cert, password: password}
}

// DefaultIdentifier returns the alias used when none is configured.
func (s *StaticKeyStore) DefaultIdentifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultAlias
}

// KeyPair resolves an alias to its signing key and certificate. The
// password must match the one the entry was registered with.
func (s *StaticKeyStore) KeyPair(alias, password string) (crypto.Signer, *x509.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[alias]
	if !ok {
		return nil, nil, fmt.Errorf("no key registered for alias %q", alias)
	}
	if entry.password != password {
		return nil, nil, fmt.Errorf("wrong password for alias %q", alias)
	}
	return entry.key, entry.cert, nil
}

// Ensure StaticKeyStore implements the crypto port.
var _ ports.CryptoHandle = (*StaticKeyStore)(nil)
