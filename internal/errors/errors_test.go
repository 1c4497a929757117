package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	require.Equal(t, apperrors.ErrValidationFailed, apperrors.Join(apperrors.ErrValidationFailed, nil))

	err := apperrors.Join(apperrors.ErrAgreementSubmissionFailed, apperrors.ErrNoIdentityHint)
	require.True(t, apperrors.Is(err, apperrors.ErrAgreementSubmissionFailed))
	require.True(t, apperrors.Is(err, apperrors.ErrNoIdentityHint))
	require.Equal(t, "agreement submission failed: no identity hint available", err.Error())
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := apperrors.Join(apperrors.ErrServerRejected, &statusError{code: 401})
	var se *statusError
	require.True(t, apperrors.As(err, &se))
	require.Equal(t, 401, se.code)
}
