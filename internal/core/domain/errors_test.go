//go:build unit

package domain

import (
	"errors"
	"fmt"
	"testing"
)

// TestRenewalError_Codes verifies the constructors assign the stable
// fault codes.
func TestRenewalError_Codes(t *testing.T) {
	invalid := InvalidRequestError("bad token")
	if invalid.Code != ErrCodeInvalidRequest || invalid.Error() != "bad token" {
		t.Errorf("invalid = %+v", invalid)
	}
	failed := RequestFailedError("cannot renew", errors.New("backend down"))
	if failed.Code != ErrCodeRequestFailed {
		t.Errorf("failed code = %v", failed.Code)
	}
	if !errors.Is(failed, failed.Cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

// TestCodeOf verifies code extraction through wrapped chains, with
// foreign errors reading as request failures.
func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", InvalidRequestError("bad token"))
	if CodeOf(wrapped) != ErrCodeInvalidRequest {
		t.Error("wrapped client fault should keep its code")
	}
	if CodeOf(errors.New("plain")) != ErrCodeRequestFailed {
		t.Error("foreign errors should read as request failures")
	}
}

// TestIsHelpers verifies the predicate helpers, including nil handling.
func TestIsHelpers(t *testing.T) {
	if !IsInvalidRequest(InvalidRequestError("x")) {
		t.Error("IsInvalidRequest should accept a client fault")
	}
	if !IsRequestFailed(RequestFailedError("x", nil)) {
		t.Error("IsRequestFailed should accept a service fault")
	}
	if IsRequestFailed(nil) {
		t.Error("nil is not a failure")
	}
	if IsInvalidRequest(errors.New("plain")) {
		t.Error("foreign errors are not client faults")
	}
}
