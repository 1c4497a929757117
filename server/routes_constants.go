package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Handshake API
	RouteAPIAuth      = "/api/v1/auth"
	RouteAPIAgreement = "/api/v1/agreement"
	RouteAPIValidate  = "/api/v1/validate"
	RouteAPIPreflight = "/api/v1/{path...}"

	RouteHealth = "/healthz"
)

const (
	contentTypeJSON     = "application/json"
	headerDebugRequest  = "X-Debug-Request"
	headerRequestID     = "X-Request-ID"
	headerAuthorization = "Authorization"
)

// Error codes returned in the "error" field of JSON error bodies
const (
	errorInvalidRequest        = "invalid_request"
	errorInvalidTelegramData   = "invalid_telegram_data"
	errorAgreementNotRequested = "agreement_not_requested"
	errorMissingToken          = "missing_token"
	errorServerError           = "server_error"
	errorRateLimited           = "rate_limited"
)
