// Package session drives the Telegram Mini App authentication handshake:
// read the host init data, authenticate against the backend, sign the
// agreement when asked, and optionally validate the issued token.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	"github.com/jrsteele09/twa-auth/host"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/jrsteele09/twa-auth/internal/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Backend is the auth API the controller talks to. backend.Client implements it.
type Backend interface {
	Authenticate(ctx context.Context, initData string) (*backend.AuthResponse, *backend.Exchange, error)
	SignAgreement(ctx context.Context, telegramID int64) (string, *backend.Exchange, error)
	Validate(ctx context.Context, token string) (*backend.ValidationResult, *backend.Exchange, error)
}

var _ Backend = (*backend.Client)(nil)

// Controller owns one Session and keeps it consistent with the latest backend
// response. Failures never escape as panics or silent drops: each one becomes a
// diagnostics.Record handed to the Listener and is also returned to the caller.
type Controller struct {
	env      host.Environment
	api      Backend
	listener Listener
	cache    diagnostics.InitDataCache
	nowTime  func() time.Time
	logger   zerolog.Logger

	mu       sync.Mutex
	session  Session
	inFlight atomic.Bool
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithListener sets the presentation listener
func WithListener(l Listener) ControllerOption {
	return func(c *Controller) {
		c.listener = l
	}
}

// WithInitDataCache sets where the raw init data is kept for diagnostics
func WithInitDataCache(cache diagnostics.InitDataCache) ControllerOption {
	return func(c *Controller) {
		c.cache = cache
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// New creates a Controller. env may be nil, in which case Initialize reports
// the host as unavailable.
func New(env host.Environment, api Backend, options ...ControllerOption) (*Controller, error) {
	if api == nil {
		return nil, errors.New("[session.New] backend is required")
	}

	c := &Controller{
		env:      env,
		api:      api,
		listener: ListenerFuncs{},
		cache:    diagnostics.NewMemoryCache(),
		nowTime:  time.Now,
		logger:   logging.Component("session"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// InFlight reports whether a trigger-driven request is outstanding.
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Initialize reads the init data and identity hint from the host.
func (c *Controller) Initialize() error {
	c.mu.Lock()

	if c.env == nil || !c.env.Available() {
		// Nothing read earlier may outlive a host that has gone away.
		c.session.InitData = ""
		c.session.User = nil
		c.session.Agreement = nil
		c.session.Token = ""
		rec := c.failLocked(apperrors.ErrHostUnavailable, nil, Failed)
		c.mu.Unlock()
		c.listener.Failed(rec)
		return apperrors.ErrHostUnavailable
	}

	raw := c.env.InitData()
	c.session.InitData = raw
	if raw == "" {
		c.session.User = nil
		rec := c.failLocked(apperrors.ErrMissingInitData, nil, Failed)
		c.mu.Unlock()
		c.listener.Failed(rec)
		return apperrors.ErrMissingInitData
	}

	c.session.User = nil
	if hint := c.env.UnsafeUser(); hint != nil {
		c.session.User = &Identity{ID: hint.ID, DisplayName: hint.DisplayName()}
	}
	c.session.Agreement = nil
	c.session.Token = ""
	c.transitionLocked(Initialized)

	if err := c.cache.Store(raw); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache init data")
	}
	c.mu.Unlock()
	return nil
}

// Retry moves a failed session back to Initialized by re-reading the host.
// It is a no-op in any other state.
func (c *Controller) Retry() error {
	c.mu.Lock()
	state := c.session.State
	c.mu.Unlock()

	if state != Failed {
		return nil
	}
	return c.Initialize()
}

// Authenticate sends the init data to the backend. The returned Outcome is the
// only state transition the call makes. The error is non-nil exactly when the
// outcome is OutcomeRejected.
func (c *Controller) Authenticate(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	initData := c.session.InitData
	if initData == "" {
		rec := c.failLocked(apperrors.ErrMissingInitData, nil, Failed)
		c.mu.Unlock()
		c.listener.Failed(rec)
		return Outcome{Kind: OutcomeRejected, Diagnostic: rec}, apperrors.ErrMissingInitData
	}
	c.mu.Unlock()

	resp, exchange, err := c.api.Authenticate(ctx, initData)

	c.mu.Lock()
	c.recordLocked(exchange)
	if err != nil {
		c.session.Agreement = nil
		rec := c.failLocked(err, exchange, Failed)
		c.mu.Unlock()
		c.listener.Failed(rec)
		return Outcome{Kind: OutcomeRejected, Diagnostic: rec}, err
	}

	if resp.AgreementNeeded {
		c.session.Token = ""
		c.session.Agreement = &AgreementPrompt{RequiredVersion: resp.AgreementVersion}
		c.transitionLocked(AgreementPending)
		c.mu.Unlock()
		c.listener.AgreementRequired(resp.AgreementVersion)
		return Outcome{Kind: OutcomeAgreementRequired, AgreementVersion: resp.AgreementVersion}, nil
	}

	c.session.Token = resp.Token
	c.session.Agreement = nil
	c.transitionLocked(Authenticated)
	c.mu.Unlock()
	c.listener.TokenObtained(resp.Token)
	return Outcome{Kind: OutcomeAuthenticated, Token: resp.Token}, nil
}

// SignAgreement submits the identity hint's user id to the agreement endpoint.
// On failure the agreement prompt stays active so the user can retry.
func (c *Controller) SignAgreement(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Agreement == nil || c.session.State != AgreementPending {
		return c.failAgreementLocked(apperrors.ErrNoAgreementPending, nil)
	}
	if c.session.User == nil {
		return c.failAgreementLocked(apperrors.ErrNoIdentityHint, nil)
	}
	telegramID := c.session.User.ID
	c.mu.Unlock()

	token, exchange, err := c.api.SignAgreement(ctx, telegramID)

	c.mu.Lock()
	c.recordLocked(exchange)
	if err != nil {
		return c.failAgreementLocked(err, exchange)
	}
	c.session.Token = token
	c.session.Agreement = nil
	c.transitionLocked(Authenticated)
	c.mu.Unlock()
	c.listener.TokenObtained(token)
	return nil
}

// failAgreementLocked reports an agreement failure without leaving
// AgreementPending. It releases c.mu.
func (c *Controller) failAgreementLocked(cause error, exchange *backend.Exchange) error {
	err := apperrors.Join(apperrors.ErrAgreementSubmissionFailed, cause)
	rec := c.failLocked(err, exchange, c.session.State)
	c.mu.Unlock()
	c.listener.Failed(rec)
	return err
}

// ValidateToken asks the backend about the stored token and reports the answer
// as-is. It never changes the token or the session state.
func (c *Controller) ValidateToken(ctx context.Context) (*backend.ValidationResult, error) {
	c.mu.Lock()
	token := c.session.Token
	if token == "" {
		return nil, c.failValidationLocked(apperrors.ErrNoToken, nil)
	}
	c.mu.Unlock()

	result, exchange, err := c.api.Validate(ctx, token)

	c.mu.Lock()
	c.recordLocked(exchange)
	if err != nil {
		return nil, c.failValidationLocked(err, exchange)
	}
	c.mu.Unlock()

	c.logger.Info().Bool("valid", result.Valid).Str("subject", result.SubjectID).Msg("token validated")
	c.listener.Validated(*result)
	return result, nil
}

// failValidationLocked releases c.mu.
func (c *Controller) failValidationLocked(cause error, exchange *backend.Exchange) error {
	err := apperrors.Join(apperrors.ErrValidationFailed, cause)
	rec := c.failLocked(err, exchange, c.session.State)
	c.mu.Unlock()
	c.listener.Failed(rec)
	return err
}

// Handle runs the operation behind a UI trigger. While one trigger is being
// handled every other trigger is refused with ErrRequestInFlight.
func (c *Controller) Handle(ctx context.Context, trigger Trigger) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return apperrors.ErrRequestInFlight
	}
	defer c.inFlight.Store(false)

	c.logger.Debug().Stringer("trigger", trigger).Msg("handling trigger")
	switch trigger {
	case AuthenticateRequested:
		_, err := c.Authenticate(ctx)
		return err
	case SignAgreementRequested:
		return c.SignAgreement(ctx)
	case ValidateRequested:
		_, err := c.ValidateToken(ctx)
		return err
	default:
		return errors.Errorf("[Handle] unknown trigger %d", trigger)
	}
}

func (c *Controller) recordLocked(exchange *backend.Exchange) {
	if exchange == nil || exchange.Request == nil {
		return
	}
	c.session.LastRequest = exchange.Request
	c.session.LastResponse = exchange.Response
}

func (c *Controller) transitionLocked(to State) {
	from := c.session.State
	c.session.State = to
	c.logger.Info().Stringer("from", from).Stringer("to", to).Msg("session state changed")
}

// failLocked is the one place diagnostics are built. The session moves to next.
func (c *Controller) failLocked(err error, exchange *backend.Exchange, next State) *diagnostics.Record {
	cached, cacheErr := c.cache.Load()
	if cacheErr != nil {
		c.logger.Warn().Err(cacheErr).Msg("failed to read init data cache")
	}

	rec := diagnostics.New(err, diagnostics.Context{
		Now:            c.nowTime(),
		Exchange:       exchange,
		RawInitData:    c.session.InitData,
		CachedInitData: cached,
	})
	c.session.LastDiagnostic = rec
	if c.session.State != next {
		c.transitionLocked(next)
	}

	c.logger.Error().Err(err).Str("kind", string(rec.Kind)).Str("diagnostic_id", rec.ID).Int("status", rec.Status).Msg("handshake step failed")
	return rec
}
