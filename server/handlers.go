package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/twa-auth/server/agreements"
	"github.com/jrsteele09/twa-auth/telegram"
	"github.com/pkg/errors"
)

const maxRequestBytes = 64 << 10

type authRequest struct {
	InitData  string `json:"init_data"`
	DebugInfo *struct {
		Timestamp string `json:"timestamp"`
		UserAgent string `json:"user_agent"`
	} `json:"debug_info,omitempty"`
}

type authResponse struct {
	AgreementNeeded  bool   `json:"agreement_needed,omitempty"`
	AgreementVersion string `json:"agreement_version,omitempty"`
	Token            string `json:"token,omitempty"`
}

type agreementRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	UserID *int64 `json:"user_id"` // null unless valid
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler is the terminal handler for OPTIONS requests without an Origin header
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// AuthHandler verifies init data and either asks for the agreement or issues a token
func (s *Server) AuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, errorInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}
		if req.DebugInfo != nil {
			s.logger.Debug().
				Str("client_timestamp", req.DebugInfo.Timestamp).
				Str("client_user_agent", req.DebugInfo.UserAgent).
				Msg("debug auth request")
		}

		data, err := telegram.Verify(req.InitData, s.config.GetBotToken(), s.nowTime(), s.config.GetInitDataMaxAge())
		if err == nil && data.User == nil {
			err = telegram.ErrInvalidUser
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("init data rejected")
			writeJSONError(w, errorInvalidTelegramData, err.Error(), http.StatusUnauthorized)
			return
		}

		telegramID := data.User.ID
		version := s.config.GetAgreementVersion()
		agreement, err := s.agreements.Get(telegramID, version)
		if err != nil && !errors.Is(err, agreements.ErrNotFound) {
			writeJSONError(w, errorServerError, err.Error(), http.StatusInternalServerError)
			return
		}

		if err != nil || !agreement.Signed() {
			if err := s.agreements.MarkPending(telegramID, version, s.nowTime()); err != nil {
				writeJSONError(w, errorServerError, err.Error(), http.StatusInternalServerError)
				return
			}
			s.logger.Info().Int64("telegram_id", telegramID).Str("version", version).Msg("agreement requested")
			writeJSON(w, http.StatusOK, authResponse{AgreementNeeded: true, AgreementVersion: version})
			return
		}

		signed, err := s.issuer.Issue(telegramID, version)
		if err != nil {
			writeJSONError(w, errorServerError, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Token: signed})
	}
}

// AgreementHandler records a signature for a pending agreement and issues a token
func (s *Server) AgreementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agreementRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, errorInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}
		if req.TelegramID == 0 {
			writeJSONError(w, errorInvalidRequest, "telegram_id is required", http.StatusBadRequest)
			return
		}

		version := s.config.GetAgreementVersion()
		if _, err := s.agreements.Sign(req.TelegramID, version, s.nowTime()); err != nil {
			if errors.Is(err, agreements.ErrNotRequested) {
				writeJSONError(w, errorAgreementNotRequested, "no agreement was requested for this user", http.StatusForbidden)
				return
			}
			writeJSONError(w, errorServerError, err.Error(), http.StatusInternalServerError)
			return
		}
		s.logger.Info().Int64("telegram_id", req.TelegramID).Str("version", version).Msg("agreement signed")

		signed, err := s.issuer.Issue(req.TelegramID, version)
		if err != nil {
			writeJSONError(w, errorServerError, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{Token: signed})
	}
}

// ValidateHandler reports whether the bearer token is a live session token for
// the current agreement version
func (s *Server) ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, errorMissingToken, "bearer token is required", http.StatusUnauthorized)
			return
		}

		claims, err := s.issuer.Verify(raw)
		if err != nil {
			s.logger.Debug().Err(err).Msg("token rejected")
			writeJSON(w, http.StatusOK, validateResponse{})
			return
		}
		if claims.AgreementVersion != s.config.GetAgreementVersion() {
			writeJSON(w, http.StatusOK, validateResponse{})
			return
		}
		telegramID, err := claims.TelegramID()
		if err != nil {
			writeJSON(w, http.StatusOK, validateResponse{})
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{Valid: true, UserID: &telegramID})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(headerAuthorization)
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "malformed JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an {error, error_description} response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
