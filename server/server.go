// Package server is a development backend for the Mini App handshake. It
// verifies Telegram init data, tracks agreement signatures in memory and
// issues session JWTs, so the client can be exercised without the real service.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/jrsteele09/twa-auth/internal/config"
	"github.com/jrsteele09/twa-auth/internal/logging"
	"github.com/jrsteele09/twa-auth/internal/ui"
	"github.com/jrsteele09/twa-auth/server/agreements"
	"github.com/jrsteele09/twa-auth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	agreements  agreements.Repo
	issuer      *token.Issuer
	rateLimiter func(http.Handler) http.Handler
	nowTime     func() time.Time
	logger      zerolog.Logger
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, agreementRepo agreements.Repo, options ...ServerOption) (*Server, error) {
	if cfg.GetBotToken() == "" {
		return nil, errors.New("[Server New] BOT_TOKEN is required")
	}
	if agreementRepo == nil {
		return nil, errors.New("[Server New] agreement repo is required")
	}

	signer, err := token.NewHMACSigner(cfg.GetJWTSecret())
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create token signer")
	}

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		agreements: agreementRepo,
		nowTime:    time.Now,
		logger:     logging.Component("devbackend"),
	}
	for _, opt := range options {
		opt(s)
	}
	s.issuer = token.NewIssuer(signer, cfg.GetTokenExpiry(), token.WithNowTime(s.nowTime))
	if limit := cfg.GetRateLimit(); limit > 0 {
		s.rateLimiter = httprate.Limit(limit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeJSONError(w, errorRateLimited, "too many requests", http.StatusTooManyRequests)
			}),
		)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			method, path = "", route
		}
		s.logger.Info().Msgf("[%s] %s", ui.Method(method, false), path)
	}
}
