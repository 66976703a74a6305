package ports

import (
	"errors"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

// TokenCache is the port interface for the persistent token store the
// renewer records issued and renewed tokens in. Keys are opaque
// strings: assertion identifiers or signature fingerprints.
//
// Implementations must provide at least per-key atomicity for
// Get/Put/Remove; the renewer holds no locks of its own and relies on
// the cache to serialize conflicting mutations to the same key.
type TokenCache interface {
	// Get retrieves a record by key. Returns ErrTokenNotFound when no
	// live record exists under the key.
	Get(key string) (*domain.CachedTokenRecord, error)

	// Put stores a record under the key, replacing any existing entry.
	Put(key string, record *domain.CachedTokenRecord) error

	// Remove deletes the entry under the key. Removing an absent key
	// is not an error.
	Remove(key string) error
}

// ErrTokenNotFound is returned when no record exists under a cache key.
var ErrTokenNotFound = errors.New("token not found")
