package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	"github.com/jrsteele09/twa-auth/host"
	"github.com/jrsteele09/twa-auth/internal/config"
	"github.com/jrsteele09/twa-auth/server"
	"github.com/jrsteele09/twa-auth/server/agreements"
	"github.com/jrsteele09/twa-auth/session"
	"github.com/jrsteele09/twa-auth/telegram"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-BOT-TOKEN"

func setupREPL(t *testing.T, initData string, copier diagnostics.Copier) (*repl, *bytes.Buffer) {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("BOT_TOKEN", testBotToken)
	t.Setenv("RATE_LIMIT", "0")

	srv, err := server.New(config.New(), agreements.NewInMemoryAgreementRepo())
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	view := newConsoleView(out, true)
	c, err := session.New(&host.Static{Raw: initData}, client, session.WithListener(view))
	require.NoError(t, err)
	require.NoError(t, c.Initialize())

	return &repl{controller: c, view: view, copier: copier}, out
}

func mint(t *testing.T, botToken string) string {
	t.Helper()
	raw, err := telegram.Mint(telegram.User{ID: 123, FirstName: "Ivan"}, botToken, time.Now())
	require.NoError(t, err)
	return raw
}

func TestREPL_Handshake(t *testing.T) {
	r, out := setupREPL(t, mint(t, testBotToken), nil)

	in := strings.NewReader("auth\nsign\nvalidate\nstatus\nquit\nauth\n")
	require.NoError(t, r.run(context.Background(), in))

	text := out.String()
	require.Contains(t, text, " AGREEMENT  agreement version 1 must be signed")
	require.Contains(t, text, " AUTHENTICATED  token obtained")
	require.Contains(t, text, "subject: 123")
	require.Contains(t, text, "token is valid for user 123")
	require.Contains(t, text, "state:   authenticated")
	require.Equal(t, session.Authenticated, r.controller.Snapshot().State)
}

func TestREPL_FailureCopyAndRetry(t *testing.T) {
	var copied string
	r, out := setupREPL(t, mint(t, "wrong-bot-token"), diagnostics.CopierFunc(func(text string) error {
		copied = text
		return nil
	}))

	require.False(t, r.exec(context.Background(), "copy"))
	require.Contains(t, out.String(), "no diagnostic to copy")

	require.False(t, r.exec(context.Background(), "auth"))
	require.Contains(t, out.String(), " FAILED ")
	require.Contains(t, out.String(), "Possible causes:")

	require.False(t, r.exec(context.Background(), "copy"))
	require.Contains(t, copied, "ERROR [ServerRejected]")
	require.Contains(t, copied, "Status: 401")

	require.False(t, r.exec(context.Background(), "retry"))
	require.Equal(t, session.Initialized, r.controller.Snapshot().State)
}

func TestREPL_CopyFallsBackToJSON(t *testing.T) {
	r, out := setupREPL(t, mint(t, "wrong-bot-token"), diagnostics.CopierFunc(func(string) error {
		return errors.New("no display")
	}))

	r.exec(context.Background(), "auth")
	r.exec(context.Background(), "copy")
	require.Contains(t, out.String(), "clipboard unavailable (no display)")
	require.Contains(t, out.String(), `"kind": "ServerRejected"`)
}

func TestREPL_UnknownCommand(t *testing.T) {
	r, out := setupREPL(t, mint(t, testBotToken), nil)
	require.False(t, r.exec(context.Background(), "dance"))
	require.Contains(t, out.String(), `unknown command "dance"`)
	require.True(t, r.exec(context.Background(), "EXIT"))
}

func TestMintCommand(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("BOT_TOKEN", "")

	out := &bytes.Buffer{}
	cmd := rootCmd()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"mint", "--bot-token", testBotToken, "--id", "42", "--first-name", "Ada"})
	require.NoError(t, cmd.Execute())

	data, err := telegram.Verify(strings.TrimSpace(out.String()), testBotToken, time.Now(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(42), data.User.ID)
	require.Equal(t, "Ada", data.User.FirstName)
}

func TestMintCommand_RequiresBotToken(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("BOT_TOKEN", "")

	cmd := rootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"mint", "--id", "42"})
	require.Error(t, cmd.Execute())
}

func TestSelectHost(t *testing.T) {
	t.Setenv("INIT_DATA_FILE", "")
	t.Setenv("INIT_DATA_VAR", "")
	c := config.New()

	require.IsType(t, &host.Static{}, selectHost(c, "user=1"))
	require.Equal(t, host.EnvVar{Name: "TWA_INIT_DATA"}, selectHost(c, ""))

	t.Setenv("INIT_DATA_FILE", "/tmp/init-data")
	require.Equal(t, host.File{Path: "/tmp/init-data"}, selectHost(config.New(), ""))
}
