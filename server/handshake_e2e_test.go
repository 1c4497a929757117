package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	"github.com/jrsteele09/twa-auth/host"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/jrsteele09/twa-auth/session"
	"github.com/stretchr/testify/require"
)

func newClientController(t *testing.T, initData string) *session.Controller {
	t.Helper()
	f := setupTestFixture(t, nil)
	ts := httptest.NewServer(f.server)
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL, backend.WithDebug(true), backend.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	c, err := session.New(&host.Static{Raw: initData}, client, session.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)
	require.NoError(t, c.Initialize())
	return c
}

func TestHandshakeThroughClient(t *testing.T) {
	c := newClientController(t, mintInitData(t, testBotToken, testNow))
	ctx := context.Background()

	require.Equal(t, &session.Identity{ID: 123, DisplayName: "Ivan"}, c.Snapshot().User)

	outcome, err := c.Authenticate(ctx)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAgreementRequired, outcome.Kind)
	require.Equal(t, "1", outcome.AgreementVersion)

	require.NoError(t, c.SignAgreement(ctx))
	s := c.Snapshot()
	require.Equal(t, session.Authenticated, s.State)
	require.True(t, s.HasToken())

	result, err := c.ValidateToken(ctx)
	require.NoError(t, err)
	require.Equal(t, backend.ValidationResult{Valid: true, SubjectID: "123"}, *result)

	// A second authentication after signing goes straight to a token.
	outcome, err = c.Authenticate(ctx)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAuthenticated, outcome.Kind)
}

func TestHandshakeThroughClient_WrongBotToken(t *testing.T) {
	c := newClientController(t, mintInitData(t, "someone-elses-bot", testNow))

	outcome, err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, apperrors.ErrServerRejected)
	require.Equal(t, session.OutcomeRejected, outcome.Kind)

	rec := outcome.Diagnostic
	require.Equal(t, diagnostics.KindServerRejected, rec.Kind)
	require.Equal(t, http.StatusUnauthorized, rec.Status)
	require.Equal(t, diagnostics.InvalidSignatureChecklist, rec.Remediation)
	require.Equal(t, "true", rec.LastRequest.Headers["X-Debug-Request"])
}
