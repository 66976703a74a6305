package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the cache key for an assertion from its signature
// bytes. Records are looked up and stored under this key alongside the
// assertion identifier.
func Fingerprint(signature []byte) string {
	sum := sha256.Sum256(signature)
	return hex.EncodeToString(sum[:])
}
