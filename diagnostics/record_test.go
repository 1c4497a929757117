package diagnostics_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want diagnostics.Kind
	}{
		{"host", apperrors.ErrHostUnavailable, diagnostics.KindHostUnavailable},
		{"missing init data", apperrors.ErrMissingInitData, diagnostics.KindMissingInitData},
		{"transport", apperrors.Join(apperrors.ErrTransport, errors.New("dial tcp")), diagnostics.KindTransportError},
		{"rejected", &backend.ResponseError{Status: 500, Reason: "boom"}, diagnostics.KindServerRejected},
		{"shape", apperrors.ErrUnexpectedResponseShape, diagnostics.KindUnexpectedResponseShape},
		{"agreement wraps rejected", apperrors.Join(apperrors.ErrAgreementSubmissionFailed, &backend.ResponseError{Status: 403}), diagnostics.KindAgreementSubmissionFailed},
		{"validation wraps transport", apperrors.Join(apperrors.ErrValidationFailed, apperrors.ErrTransport), diagnostics.KindValidationFailed},
		{"precondition", apperrors.ErrNoToken, diagnostics.KindPrecondition},
		{"unknown", errors.New("something else"), diagnostics.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, diagnostics.KindOf(tt.err))
		})
	}
}

func TestNew_InvalidTelegramData(t *testing.T) {
	exchange := &backend.Exchange{
		Request: &backend.RequestSnapshot{
			ID:     "req-1",
			Method: http.MethodPost,
			URL:    "http://backend/api/v1/auth",
			Body:   json.RawMessage(`{"init_data":"user=123&hash=abc"}`),
			SentAt: testNow,
		},
		Response: &backend.ResponseSnapshot{
			Status:     http.StatusUnauthorized,
			Body:       json.RawMessage(`{"error":"invalid_telegram_data"}`),
			ReceivedAt: testNow,
		},
	}
	err := &backend.ResponseError{Status: http.StatusUnauthorized, Reason: "invalid_telegram_data"}

	rec := diagnostics.New(err, diagnostics.Context{
		Now:            testNow,
		Exchange:       exchange,
		RawInitData:    "user=123&hash=abc",
		CachedInitData: "user=123&hash=abc",
	})

	want := &diagnostics.Record{
		Timestamp:      testNow,
		Kind:           diagnostics.KindServerRejected,
		Error:          "HTTP 401: invalid_telegram_data",
		Status:         http.StatusUnauthorized,
		LastRequest:    exchange.Request,
		LastResponse:   exchange.Response,
		RawInitData:    "user=123&hash=abc",
		CachedInitData: "user=123&hash=abc",
		Remediation:    diagnostics.InvalidSignatureChecklist,
	}
	if diff := cmp.Diff(want, rec, cmpopts.IgnoreFields(diagnostics.Record{}, "ID")); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	require.NotEmpty(t, rec.ID)

	text := rec.Text()
	require.Contains(t, text, "Status: 401")
	require.Contains(t, text, "Possible causes:")
	for _, item := range diagnostics.InvalidSignatureChecklist {
		require.Contains(t, text, item)
	}
	require.Contains(t, text, "invalid_telegram_data")
	require.Contains(t, text, "Telegram init data:\nuser=123&hash=abc")
	require.NotContains(t, text, "Cached init data:")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.JSON()), &decoded))
	require.Equal(t, "ServerRejected", decoded["kind"])
	require.Equal(t, float64(401), decoded["status"])
}

func TestNew_NoChecklistForOtherRejections(t *testing.T) {
	rec := diagnostics.New(&backend.ResponseError{Status: 500, Reason: "database down"}, diagnostics.Context{Now: testNow})
	require.Empty(t, rec.Remediation)
	require.NotContains(t, rec.Text(), "Possible causes:")
}

func TestNew_TransportFailureWithoutResponse(t *testing.T) {
	exchange := &backend.Exchange{Request: &backend.RequestSnapshot{ID: "req-2", Method: http.MethodPost}}
	rec := diagnostics.New(apperrors.Join(apperrors.ErrTransport, errors.New("connection refused")), diagnostics.Context{
		Now:      testNow,
		Exchange: exchange,
	})

	require.Equal(t, diagnostics.KindTransportError, rec.Kind)
	require.Zero(t, rec.Status)
	require.Nil(t, rec.LastResponse)
	require.Contains(t, rec.Text(), "Request:")
	require.NotContains(t, rec.Text(), "Response:")
}

func TestMemoryCache(t *testing.T) {
	c := diagnostics.NewMemoryCache()
	raw, err := c.Load()
	require.NoError(t, err)
	require.Empty(t, raw)

	require.NoError(t, c.Store("user=1&hash=x"))
	raw, err = c.Load()
	require.NoError(t, err)
	require.Equal(t, "user=1&hash=x", raw)
}

func TestFileCache(t *testing.T) {
	c := diagnostics.NewFileCache(filepath.Join(t.TempDir(), "last_tg_init_data"))
	raw, err := c.Load()
	require.NoError(t, err)
	require.Empty(t, raw)

	require.NoError(t, c.Store("user=1&hash=x"))
	require.NoError(t, c.Store("user=2&hash=y"))
	raw, err = c.Load()
	require.NoError(t, err)
	require.Equal(t, "user=2&hash=y", raw)
}

func TestCopierFunc(t *testing.T) {
	var got string
	var c diagnostics.Copier = diagnostics.CopierFunc(func(text string) error {
		got = text
		return nil
	})
	require.NoError(t, c.Copy("diag"))
	require.Equal(t, "diag", got)
}
