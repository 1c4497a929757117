package session

import (
	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
)

// State is the handshake lifecycle position of a Session.
type State int

const (
	Uninitialized State = iota
	Initialized
	AgreementPending
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case AgreementPending:
		return "agreement_pending"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Identity is the unverified user hint from the host. It is displayed and used
// as the agreement subject, never for authorization decisions.
type Identity struct {
	ID          int64
	DisplayName string
}

// AgreementPrompt exists while the backend waits for an agreement signature.
type AgreementPrompt struct {
	RequiredVersion string
}

// Session is the state of one application instance's handshake. It lives only
// as long as its Controller.
type Session struct {
	State          State
	InitData       string
	LastRequest    *backend.RequestSnapshot
	LastResponse   *backend.ResponseSnapshot
	Token          string // only ever a value the backend returned
	User           *Identity
	Agreement      *AgreementPrompt
	LastDiagnostic *diagnostics.Record
}

// HasToken reports whether a backend issued token is stored.
func (s Session) HasToken() bool {
	return s.Token != ""
}

func (s Session) clone() Session {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	if s.Agreement != nil {
		a := *s.Agreement
		c.Agreement = &a
	}
	return c
}
