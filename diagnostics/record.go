// Package diagnostics builds the operator-facing record of a failed handshake
// step. Records are only ever displayed or copied, never sent anywhere.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/twa-auth/backend"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
)

// Kind classifies a failure.
type Kind string

const (
	KindHostUnavailable           Kind = "HostUnavailable"
	KindMissingInitData           Kind = "MissingInitData"
	KindTransportError            Kind = "TransportError"
	KindServerRejected            Kind = "ServerRejected"
	KindUnexpectedResponseShape   Kind = "UnexpectedResponseShape"
	KindAgreementSubmissionFailed Kind = "AgreementSubmissionFailed"
	KindValidationFailed          Kind = "ValidationFailed"
	KindPrecondition              Kind = "PreconditionFailed"
	KindUnknown                   Kind = "Unknown"
)

// kindOrder is checked first to last; the operation-level kinds wrap the
// exchange-level ones and take priority.
var kindOrder = []struct {
	target error
	kind   Kind
}{
	{apperrors.ErrAgreementSubmissionFailed, KindAgreementSubmissionFailed},
	{apperrors.ErrValidationFailed, KindValidationFailed},
	{apperrors.ErrHostUnavailable, KindHostUnavailable},
	{apperrors.ErrMissingInitData, KindMissingInitData},
	{apperrors.ErrServerRejected, KindServerRejected},
	{apperrors.ErrUnexpectedResponseShape, KindUnexpectedResponseShape},
	{apperrors.ErrTransport, KindTransportError},
	{apperrors.ErrNoAgreementPending, KindPrecondition},
	{apperrors.ErrNoIdentityHint, KindPrecondition},
	{apperrors.ErrNoToken, KindPrecondition},
	{apperrors.ErrRequestInFlight, KindPrecondition},
}

// KindOf returns the Kind of err.
func KindOf(err error) Kind {
	for _, k := range kindOrder {
		if apperrors.Is(err, k.target) {
			return k.kind
		}
	}
	return KindUnknown
}

// Record is a structured snapshot of a failure.
type Record struct {
	ID             string                    `json:"id"`
	Timestamp      time.Time                 `json:"timestamp"`
	Kind           Kind                      `json:"kind"`
	Error          string                    `json:"error"`
	Status         int                       `json:"status,omitempty"`
	LastRequest    *backend.RequestSnapshot  `json:"request,omitempty"`
	LastResponse   *backend.ResponseSnapshot `json:"response,omitempty"`
	RawInitData    string                    `json:"telegram_data,omitempty"`
	CachedInitData string                    `json:"last_tg_init_data,omitempty"`
	Remediation    []string                  `json:"remediation,omitempty"`
}

// Context is everything known about the session when a failure happens.
type Context struct {
	Now            time.Time
	Exchange       *backend.Exchange
	RawInitData    string
	CachedInitData string
}

// New is the single construction path for diagnostic records.
func New(err error, c Context) *Record {
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	r := &Record{
		ID:             uuid.New().String(),
		Timestamp:      c.Now.UTC(),
		Kind:           KindOf(err),
		RawInitData:    c.RawInitData,
		CachedInitData: c.CachedInitData,
	}
	if err != nil {
		r.Error = err.Error()
	}
	if c.Exchange != nil {
		r.LastRequest = c.Exchange.Request
		r.LastResponse = c.Exchange.Response
		if c.Exchange.Response != nil {
			r.Status = c.Exchange.Response.Status
		}
	}

	var respErr *backend.ResponseError
	if apperrors.As(err, &respErr) {
		r.Status = respErr.Status
		if isInvalidSignature(respErr.Reason) {
			r.Remediation = append([]string(nil), InvalidSignatureChecklist...)
		}
	}
	return r
}

// JSON renders the record as indented JSON.
func (r *Record) JSON() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}

// Text renders the record for display and copying.
func (r *Record) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ERROR [%s]: %s\n", r.Kind, r.Error)
	fmt.Fprintf(&sb, "Time: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Diagnostic ID: %s\n", r.ID)
	if r.Status != 0 {
		fmt.Fprintf(&sb, "Status: %d\n", r.Status)
	}

	if len(r.Remediation) > 0 {
		sb.WriteString("\nPossible causes:\n")
		for i, item := range r.Remediation {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, item)
		}
	}

	if r.LastRequest != nil {
		writeJSON(&sb, "Request", r.LastRequest)
	}
	if r.LastResponse != nil {
		writeJSON(&sb, "Response", r.LastResponse)
	}

	if r.RawInitData != "" {
		fmt.Fprintf(&sb, "\nTelegram init data:\n%s\n", r.RawInitData)
	}
	if r.CachedInitData != "" && r.CachedInitData != r.RawInitData {
		fmt.Fprintf(&sb, "\nCached init data:\n%s\n", r.CachedInitData)
	}
	return sb.String()
}

func writeJSON(sb *strings.Builder, title string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n%s\n", title, b)
}
