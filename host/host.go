// Package host provides the Mini App host capability the handshake reads from:
// the signed init data and the unverified identity hint that comes with it.
package host

import (
	"os"
	"strings"

	"github.com/jrsteele09/twa-auth/telegram"
)

// Environment is the Telegram WebApp host as seen by the client.
type Environment interface {
	// Available reports whether the host capability exists at all
	Available() bool

	// InitData returns the raw signed init data, possibly empty
	InitData() string

	// UnsafeUser returns the identity hint, or nil. It is for display only.
	UnsafeUser() *telegram.User
}

// UnsafeUserFrom extracts the identity hint from raw init data without verifying it.
func UnsafeUserFrom(raw string) *telegram.User {
	data, err := telegram.Parse(raw)
	if err != nil {
		return nil
	}
	return data.User
}

// Static is a host with fixed init data. User overrides the hint parsed from Raw.
type Static struct {
	Raw  string
	User *telegram.User
}

var _ Environment = (*Static)(nil)

func (s *Static) Available() bool { return s != nil }

func (s *Static) InitData() string { return s.Raw }

func (s *Static) UnsafeUser() *telegram.User {
	if s.User != nil {
		u := *s.User
		return &u
	}
	return UnsafeUserFrom(s.Raw)
}

// EnvVar reads init data from an environment variable. The host is unavailable
// when the variable is unset.
type EnvVar struct {
	Name   string
	Lookup func(string) (string, bool) // defaults to os.LookupEnv
}

var _ Environment = EnvVar{}

func (e EnvVar) lookup() (string, bool) {
	if e.Lookup != nil {
		return e.Lookup(e.Name)
	}
	return os.LookupEnv(e.Name)
}

func (e EnvVar) Available() bool {
	_, ok := e.lookup()
	return ok
}

func (e EnvVar) InitData() string {
	v, _ := e.lookup()
	return strings.TrimSpace(v)
}

func (e EnvVar) UnsafeUser() *telegram.User {
	return UnsafeUserFrom(e.InitData())
}

// File reads init data from a file, re-reading it on every call so an updated
// file is picked up by the next Initialize.
type File struct {
	Path string
}

var _ Environment = File{}

func (f File) Available() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

func (f File) InitData() string {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (f File) UnsafeUser() *telegram.User {
	return UnsafeUserFrom(f.InitData())
}
