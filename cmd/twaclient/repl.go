package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jrsteele09/twa-auth/diagnostics"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/jrsteele09/twa-auth/session"
)

const helpText = `commands:
  auth      authenticate with the host init data
  sign      sign the pending agreement
  validate  validate the stored token
  copy      copy the last diagnostic to the clipboard
  retry     start over after a failure
  status    show the session
  help      show this help
  quit      exit
`

// repl reads commands line by line and forwards them to the controller
type repl struct {
	controller *session.Controller
	view       *consoleView
	copier     diagnostics.Copier
}

var triggers = map[string]session.Trigger{
	"auth":     session.AuthenticateRequested,
	"sign":     session.SignAgreementRequested,
	"validate": session.ValidateRequested,
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	r.view.printf("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := r.exec(ctx, scanner.Text()); quit {
			return nil
		}
		r.view.printf("> ")
	}
	return scanner.Err()
}

// exec runs one command line. It reports whether the loop should stop.
func (r *repl) exec(ctx context.Context, line string) bool {
	cmd := strings.ToLower(strings.TrimSpace(line))
	if trigger, ok := triggers[cmd]; ok {
		// Failures reach the view through the listener; only the in-flight guard needs reporting here.
		if err := r.controller.Handle(ctx, trigger); errors.Is(err, apperrors.ErrRequestInFlight) {
			r.view.printf("a request is already in flight\n")
		}
		return false
	}

	switch cmd {
	case "":
	case "copy":
		r.copyDiagnostic()
	case "retry":
		if err := r.controller.Retry(); err == nil {
			r.view.status(r.controller.Snapshot())
		}
	case "status":
		r.view.status(r.controller.Snapshot())
	case "help", "?":
		r.view.printf(helpText)
	case "quit", "exit", "q":
		return true
	default:
		r.view.printf("unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func (r *repl) copyDiagnostic() {
	rec := r.controller.Snapshot().LastDiagnostic
	if rec == nil {
		r.view.printf("no diagnostic to copy\n")
		return
	}
	if err := r.copier.Copy(rec.Text()); err != nil {
		r.view.printf("clipboard unavailable (%v), diagnostic follows:\n%s\n", err, rec.JSON())
		return
	}
	r.view.printf("diagnostic %s copied to clipboard\n", rec.ID)
}
