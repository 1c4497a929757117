package agreements

import (
	"errors"
	"time"
)

var (
	// ErrNotRequested is returned when signing an agreement that was never offered
	ErrNotRequested = errors.New("agreement not requested")
	// ErrNotFound is returned when no agreement exists for a user and version
	ErrNotFound = errors.New("agreement not found")
)

// Agreement tracks one user's progress through one agreement version
type Agreement struct {
	TelegramID int64
	Version    string

	RequestedAt time.Time
	SignedAt    time.Time // zero while pending
}

// Signed reports whether the user has signed this version
func (a Agreement) Signed() bool {
	return !a.SignedAt.IsZero()
}

type Repo interface {
	// MarkPending records that version was offered to telegramID. Signed agreements are left untouched.
	MarkPending(telegramID int64, version string, at time.Time) error
	// Sign completes the pending agreement for telegramID.
	Sign(telegramID int64, version string, at time.Time) (Agreement, error)
	Get(telegramID int64, version string) (Agreement, error)
}
