package telegram

import "errors"

var (
	ErrEmptyInitData   = errors.New("init data is empty")
	ErrHashMissing     = errors.New("init data hash not found")
	ErrHashMismatch    = errors.New("init data hash mismatch")
	ErrInitDataExpired = errors.New("init data expired")
	ErrAuthDateMissing = errors.New("init data auth_date not found")
	ErrInvalidUser     = errors.New("init data user field is invalid")
)
