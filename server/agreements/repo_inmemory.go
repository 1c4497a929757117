package agreements

import (
	"fmt"
	"sync"
	"time"
)

var _ Repo = (*InMemoryAgreementRepo)(nil)

// InMemoryAgreementRepo is an in-memory implementation of Repo
type InMemoryAgreementRepo struct {
	mu         sync.RWMutex
	agreements map[int64]map[string]Agreement // telegramID -> version -> Agreement
}

// NewInMemoryAgreementRepo creates a new in-memory agreement repository
func NewInMemoryAgreementRepo() *InMemoryAgreementRepo {
	return &InMemoryAgreementRepo{
		agreements: make(map[int64]map[string]Agreement),
	}
}

func (r *InMemoryAgreementRepo) MarkPending(telegramID int64, version string, at time.Time) error {
	if err := validateKey(telegramID, version); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agreements[telegramID]; !ok {
		r.agreements[telegramID] = make(map[string]Agreement)
	}
	if existing, ok := r.agreements[telegramID][version]; ok && existing.Signed() {
		return nil
	}
	r.agreements[telegramID][version] = Agreement{
		TelegramID:  telegramID,
		Version:     version,
		RequestedAt: at,
	}
	return nil
}

func (r *InMemoryAgreementRepo) Sign(telegramID int64, version string, at time.Time) (Agreement, error) {
	if err := validateKey(telegramID, version); err != nil {
		return Agreement{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	agreement, ok := r.agreements[telegramID][version]
	if !ok {
		return Agreement{}, ErrNotRequested
	}
	if !agreement.Signed() {
		agreement.SignedAt = at
		r.agreements[telegramID][version] = agreement
	}
	return agreement, nil
}

func (r *InMemoryAgreementRepo) Get(telegramID int64, version string) (Agreement, error) {
	if err := validateKey(telegramID, version); err != nil {
		return Agreement{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	agreement, ok := r.agreements[telegramID][version]
	if !ok {
		return Agreement{}, ErrNotFound
	}
	return agreement, nil
}

func validateKey(telegramID int64, version string) error {
	if telegramID == 0 {
		return fmt.Errorf("telegramID is required")
	}
	if version == "" {
		return fmt.Errorf("version is required")
	}
	return nil
}
