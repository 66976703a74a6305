package domain

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Assertion identifiers must be valid XML NCNames, which cannot start
// with a digit, so every generated identifier carries a "_" prefix.
const assertionIDPrefix = "_"

var (
	idOnce sync.Once
	idGen  *idGenerator
)

// idGenerator produces ULIDs from a shared monotonic entropy source.
// ulid.MonotonicEntropy is not safe for concurrent use, hence the lock.
type idGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *idGenerator) newID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	u := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy)
	return assertionIDPrefix + u.String()
}

// NewAssertionID returns a fresh assertion identifier. Identifiers are
// unique across concurrent renewals within the process.
func NewAssertionID() string {
	idOnce.Do(func() {
		idGen = &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
	})
	return idGen.newID()
}
