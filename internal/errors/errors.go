package errors

import (
	"errors"
	"fmt"
)

// Handshake error taxonomy. Every failure surfaced to the presentation layer
// carries exactly one of the first group in its chain.
var (
	// Host environment errors
	ErrHostUnavailable = errors.New("telegram webapp host unavailable")
	ErrMissingInitData = errors.New("telegram init data is empty")

	// Backend exchange errors
	ErrTransport                 = errors.New("transport error")
	ErrServerRejected            = errors.New("server rejected request")
	ErrUnexpectedResponseShape   = errors.New("unexpected response shape")
	ErrAgreementSubmissionFailed = errors.New("agreement submission failed")
	ErrValidationFailed          = errors.New("token validation failed")

	// Precondition errors
	ErrNoAgreementPending = errors.New("no agreement pending")
	ErrNoIdentityHint     = errors.New("no identity hint available")
	ErrNoToken            = errors.New("no token stored")
	ErrRequestInFlight    = errors.New("request already in flight")
)

// Join wraps cause under kind so that both match with Is.
func Join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
