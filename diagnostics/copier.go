package diagnostics

import "github.com/atotto/clipboard"

// Copier places diagnostic text where an operator can paste it.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(text string) error

func (f CopierFunc) Copy(text string) error { return f(text) }

// Clipboard copies to the system clipboard.
type Clipboard struct{}

func (Clipboard) Copy(text string) error {
	return clipboard.WriteAll(text)
}
