package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/twa-auth/internal/errors"
	"github.com/jrsteele09/twa-auth/internal/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// Client talks to the auth backend. It never retries; every call returns the
// exchange it performed, including on failure.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	debug      bool
	nowTime    func() time.Time
	newID      func() string
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. The caller's http.Client is never modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithDebug attaches debug_info to auth payloads and sends X-Debug-Request
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithRequestIDs sets the request id generator (primarily for testing)
func WithRequestIDs(newID func() string) ClientOption {
	return func(c *Client) {
		c.newID = newID
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[backend.New] invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("[backend.New] unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		userAgent:  "twa-auth-client",
		nowTime:    time.Now,
		newID:      func() string { return uuid.New().String() },
		logger:     logging.Component("backend"),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

type authRequest struct {
	InitData  string     `json:"init_data"`
	DebugInfo *debugInfo `json:"debug_info,omitempty"`
}

type debugInfo struct {
	Timestamp string `json:"timestamp"`
	UserAgent string `json:"user_agent"`
}

type agreementRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

// Authenticate posts init data to the auth endpoint.
func (c *Client) Authenticate(ctx context.Context, initData string) (*AuthResponse, *Exchange, error) {
	if initData == "" {
		return nil, &Exchange{}, apperrors.ErrMissingInitData
	}

	payload := authRequest{InitData: initData}
	if c.debug {
		payload.DebugInfo = &debugInfo{
			Timestamp: c.nowTime().UTC().Format(time.RFC3339),
			UserAgent: c.userAgent,
		}
	}

	body, exchange, err := c.post(ctx, RouteAuth, payload, "")
	if err != nil {
		return nil, exchange, err
	}

	if gjson.GetBytes(body, "agreement_needed").Bool() {
		version := gjson.GetBytes(body, "agreement_version").String()
		if version == "" {
			version = defaultAgreementVersion
		}
		return &AuthResponse{AgreementNeeded: true, AgreementVersion: version}, exchange, nil
	}
	if token := stringField(body, "token"); token != "" {
		return &AuthResponse{Token: token}, exchange, nil
	}
	return nil, exchange, errors.Wrap(apperrors.ErrUnexpectedResponseShape, "[Authenticate] expected agreement_needed or token")
}

// SignAgreement submits the agreement signature for telegramID and returns the issued token.
func (c *Client) SignAgreement(ctx context.Context, telegramID int64) (string, *Exchange, error) {
	body, exchange, err := c.post(ctx, RouteAgreement, agreementRequest{TelegramID: telegramID}, "")
	if err != nil {
		return "", exchange, err
	}
	token := stringField(body, "token")
	if token == "" {
		return "", exchange, errors.Wrap(apperrors.ErrUnexpectedResponseShape, "[SignAgreement] expected token")
	}
	return token, exchange, nil
}

// Validate asks the backend whether token is valid.
func (c *Client) Validate(ctx context.Context, token string) (*ValidationResult, *Exchange, error) {
	if token == "" {
		return nil, &Exchange{}, apperrors.ErrNoToken
	}
	body, exchange, err := c.post(ctx, RouteValidate, nil, token)
	if err != nil {
		return nil, exchange, err
	}

	valid := gjson.GetBytes(body, "valid")
	if !valid.Exists() {
		return nil, exchange, errors.Wrap(apperrors.ErrUnexpectedResponseShape, "[Validate] expected valid")
	}
	result := &ValidationResult{Valid: valid.Bool()}
	if userID := gjson.GetBytes(body, "user_id"); userID.Exists() && userID.Type != gjson.Null {
		result.SubjectID = userID.String()
	}
	return result, exchange, nil
}

func stringField(body []byte, field string) string {
	v := gjson.GetBytes(body, field)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// post sends payload (nil for an empty body) and returns the body of a 2xx reply.
func (c *Client) post(ctx context.Context, route string, payload any, bearer string) ([]byte, *Exchange, error) {
	target := c.baseURL.JoinPath(route).String()
	exchange := &Exchange{}

	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, exchange, errors.Wrap(err, "[post] failed to encode payload")
		}
		reqBody = b
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(reqBody))
	if err != nil {
		return nil, exchange, apperrors.Join(apperrors.ErrTransport, err)
	}
	requestID := c.newID()
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set(headerRequestID, requestID)
	if c.debug {
		req.Header.Set(headerDebugRequest, "true")
	}
	if bearer != "" {
		(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	exchange.Request = &RequestSnapshot{
		ID:      requestID,
		Method:  req.Method,
		URL:     target,
		Headers: snapshotHeaders(req.Header),
		Body:    rawBody(reqBody),
		SentAt:  c.nowTime(),
	}
	c.logger.Debug().Str("request_id", requestID).Str("url", target).RawJSON("body", nonEmptyJSON(exchange.Request.Body)).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("request failed")
		return nil, exchange, apperrors.Join(apperrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	exchange.Response = &ResponseSnapshot{
		Status:     resp.StatusCode,
		Body:       rawBody(respBody),
		ReceivedAt: c.nowTime(),
	}
	if err != nil {
		return nil, exchange, apperrors.Join(apperrors.ErrTransport, fmt.Errorf("reading response: %w", err))
	}
	c.logger.Debug().Str("request_id", requestID).Int("status", resp.StatusCode).RawJSON("body", nonEmptyJSON(exchange.Response.Body)).Msg("received response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, exchange, newResponseError(resp.StatusCode, respBody)
	}
	return respBody, exchange, nil
}

func snapshotHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k := range h {
		headers[k] = h.Get(k)
	}
	if _, ok := headers[headerAuthorize]; ok {
		headers[headerAuthorize] = "Bearer [redacted]"
	}
	return headers
}

func nonEmptyJSON(b json.RawMessage) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
