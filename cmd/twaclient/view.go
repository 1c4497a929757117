package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	"github.com/jrsteele09/twa-auth/internal/ui"
	"github.com/jrsteele09/twa-auth/session"
	"github.com/jrsteele09/twa-auth/token"
)

// consoleView renders controller events as terminal output
type consoleView struct {
	mu    sync.Mutex
	out   io.Writer
	plain bool
}

var _ session.Listener = (*consoleView)(nil)

func newConsoleView(out io.Writer, plain bool) *consoleView {
	return &consoleView{out: out, plain: plain}
}

func (v *consoleView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func (v *consoleView) AgreementRequired(version string) {
	v.printf("%s agreement version %s must be signed. Type 'sign' to accept.\n",
		ui.Colourise(ui.YellowInverse, " AGREEMENT ", v.plain), version)
}

func (v *consoleView) TokenObtained(raw string) {
	v.printf("%s token obtained\n", ui.Colourise(ui.GreenInverse, " AUTHENTICATED ", v.plain))
	v.printf("  token: %s\n", raw)
	if claims, err := token.Peek(raw); err == nil {
		v.printf("  subject: %s  expires: %s\n", claims.Subject, formatTime(claims.ExpiresAt))
	}
}

func (v *consoleView) Failed(record *diagnostics.Record) {
	v.printf("%s\n%s\n", ui.Colourise(ui.RedInverse, " FAILED ", v.plain), record.Text())
	v.printf("Type 'copy' to copy the diagnostic, 'retry' to start over.\n")
}

func (v *consoleView) Validated(result backend.ValidationResult) {
	if !result.Valid {
		v.printf("%s token is not valid\n", ui.Colourise(ui.Red, "✗", v.plain))
		return
	}
	v.printf("%s token is valid for user %s\n", ui.Colourise(ui.Green, "✓", v.plain), result.SubjectID)
}

// status renders a session snapshot
func (v *consoleView) status(s session.Session) {
	state := s.State.String()
	v.printf("state:   %s\n", ui.Colourise(ui.StateColors[state], state, v.plain))
	if s.User != nil {
		v.printf("user:    %s (%d, unverified)\n", s.User.DisplayName, s.User.ID)
	} else {
		v.printf("user:    -\n")
	}
	if s.Agreement != nil {
		v.printf("pending: agreement version %s\n", s.Agreement.RequiredVersion)
	}
	if s.HasToken() {
		v.printf("token:   %s\n", s.Token)
	}
	if s.LastResponse != nil {
		v.printf("last:    HTTP %d at %s\n", s.LastResponse.Status, formatTime(s.LastResponse.ReceivedAt))
	}
	if s.LastDiagnostic != nil {
		v.printf("error:   [%s] %s\n", s.LastDiagnostic.Kind, s.LastDiagnostic.ID)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
