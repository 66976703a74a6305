package domain

import (
	"strconv"
	"time"
)

// TokenState is the lifecycle state of a received token as established
// by the validation step that preceded renewal.
type TokenState int

const (
	// TokenStateNone means no validation outcome is recorded.
	TokenStateNone TokenState = iota
	// TokenStateValid means the token verified successfully.
	TokenStateValid
	// TokenStateInvalid means the token failed verification.
	TokenStateInvalid
	// TokenStateCancelled means the token was cancelled earlier.
	TokenStateCancelled
	// TokenStateExpired means the token verified but its validity
	// window has passed.
	TokenStateExpired
)

// String returns the lifecycle state name.
func (s TokenState) String() string {
	switch s {
	case TokenStateNone:
		return "none"
	case TokenStateValid:
		return "valid"
	case TokenStateInvalid:
		return "invalid"
	case TokenStateCancelled:
		return "cancelled"
	case TokenStateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ReceivedToken is the token presented for renewal: the raw assertion
// payload plus its lifecycle state. It is owned by the caller and never
// mutated by the renewer.
type ReceivedToken struct {
	// Payload is the serialized assertion element, schema variant A or B.
	Payload []byte
	// State is the lifecycle state established before renewal was
	// attempted. Only valid and expired tokens are renewable.
	State TokenState
}

// Renewal-policy property keys carried on cached token records.
const (
	// PropertyRenewalAllowed marks a record as opted into renewal.
	PropertyRenewalAllowed = "sts.token.renewing.allow"
	// PropertyRenewalAllowedAfterExpiry marks a record as renewable
	// even after its validity window has passed.
	PropertyRenewalAllowedAfterExpiry = "sts.token.renewing.allow-after-expiry"
)

// RenewingFlags are the renewal-policy flags a request carries, and the
// flags recorded onto the renewed token's cache record.
type RenewingFlags struct {
	Allow            bool
	AllowAfterExpiry bool
}

// DefaultRenewingFlags allows renewal but not renewal after expiry.
func DefaultRenewingFlags() RenewingFlags {
	return RenewingFlags{Allow: true}
}

// Properties renders the flags as cached-record properties.
func (f RenewingFlags) Properties() map[string]string {
	return map[string]string{
		PropertyRenewalAllowed:            strconv.FormatBool(f.Allow),
		PropertyRenewalAllowedAfterExpiry: strconv.FormatBool(f.AllowAfterExpiry),
	}
}

// CachedTokenRecord is the service's prior record for an assertion,
// stored under the assertion identifier and the signature fingerprint.
type CachedTokenRecord struct {
	// ID is the assertion identifier the record was stored for.
	ID string
	// Assertion is the serialized assertion at the time of storage.
	Assertion []byte
	// Expires is the assertion's not-on-or-after at storage time.
	Expires time.Time
	// Principal and Realm identify who the token was issued to and
	// under which credential scope.
	Principal string
	Realm     string
	// Properties holds the renewal-policy flags. A record without
	// properties cannot be renewed.
	Properties map[string]string
}

// BoolProperty reads a boolean property from the record; absent or
// malformed values read as false.
func (r *CachedTokenRecord) BoolProperty(key string) bool {
	if r.Properties == nil {
		return false
	}
	v, err := strconv.ParseBool(r.Properties[key])
	return err == nil && v
}
