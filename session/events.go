package session

import (
	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
)

// Listener is the presentation boundary. The controller calls it after every
// state change and never waits on it for anything but the call itself.
type Listener interface {
	AgreementRequired(version string)
	TokenObtained(token string)
	Failed(record *diagnostics.Record)
	Validated(result backend.ValidationResult)
}

// ListenerFuncs adapts optional callbacks to a Listener.
type ListenerFuncs struct {
	OnAgreementRequired func(version string)
	OnTokenObtained     func(token string)
	OnFailed            func(record *diagnostics.Record)
	OnValidated         func(result backend.ValidationResult)
}

var _ Listener = ListenerFuncs{}

func (l ListenerFuncs) AgreementRequired(version string) {
	if l.OnAgreementRequired != nil {
		l.OnAgreementRequired(version)
	}
}

func (l ListenerFuncs) TokenObtained(token string) {
	if l.OnTokenObtained != nil {
		l.OnTokenObtained(token)
	}
}

func (l ListenerFuncs) Failed(record *diagnostics.Record) {
	if l.OnFailed != nil {
		l.OnFailed(record)
	}
}

func (l ListenerFuncs) Validated(result backend.ValidationResult) {
	if l.OnValidated != nil {
		l.OnValidated(result)
	}
}

// Trigger is a UI action the presentation layer forwards to the controller.
type Trigger int

const (
	AuthenticateRequested Trigger = iota + 1
	SignAgreementRequested
	ValidateRequested
)

func (t Trigger) String() string {
	switch t {
	case AuthenticateRequested:
		return "authenticate"
	case SignAgreementRequested:
		return "sign_agreement"
	case ValidateRequested:
		return "validate"
	default:
		return "unknown"
	}
}

// OutcomeKind tags the result of Authenticate.
type OutcomeKind int

const (
	OutcomeAgreementRequired OutcomeKind = iota + 1
	OutcomeAuthenticated
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAgreementRequired:
		return "agreement_required"
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Authenticate call. Only the fields of its Kind are set.
type Outcome struct {
	Kind             OutcomeKind
	AgreementVersion string              // OutcomeAgreementRequired
	Token            string              // OutcomeAuthenticated
	Diagnostic       *diagnostics.Record // OutcomeRejected
}
