package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/tidwall/gjson"
)

// RequestSnapshot is the outgoing half of an exchange as recorded for diagnostics.
type RequestSnapshot struct {
	ID      string            `json:"id"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
	SentAt  time.Time         `json:"sent_at"`
}

// ResponseSnapshot is the raw response: status plus body. Non-JSON bodies are
// kept as a JSON string.
type ResponseSnapshot struct {
	Status     int             `json:"status"`
	Body       json.RawMessage `json:"body,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Exchange pairs a request with its response. Response is nil when the request
// never produced one.
type Exchange struct {
	Request  *RequestSnapshot  `json:"request,omitempty"`
	Response *ResponseSnapshot `json:"response,omitempty"`
}

// AuthResponse is a successful reply from the auth endpoint. Exactly one of
// AgreementNeeded or Token is set.
type AuthResponse struct {
	AgreementNeeded  bool
	AgreementVersion string
	Token            string
}

// ValidationResult is reported exactly as the backend returned it.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	SubjectID string `json:"user_id,omitempty"`
}

// ResponseError is a non-2xx reply. It matches ErrServerRejected.
type ResponseError struct {
	Status int
	Reason string // error field of the body, or the status text
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Reason)
}

func (e *ResponseError) Unwrap() error {
	return apperrors.ErrServerRejected
}

func newResponseError(status int, body []byte) *ResponseError {
	reason := gjson.GetBytes(body, "error").String()
	if reason == "" {
		reason = http.StatusText(status)
	}
	if reason == "" {
		reason = fmt.Sprintf("HTTP %d", status)
	}
	return &ResponseError{Status: status, Reason: reason}
}

func rawBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if gjson.ValidBytes(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return json.RawMessage(quoted)
}
