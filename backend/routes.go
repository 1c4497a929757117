package backend

// Backend API routes consumed by the client
const (
	RouteAuth      = "/api/v1/auth"
	RouteAgreement = "/api/v1/agreement"
	RouteValidate  = "/api/v1/validate"
)

const (
	headerRequestID    = "X-Request-ID"
	headerDebugRequest = "X-Debug-Request"
	headerUserAgent    = "User-Agent"
	headerContentType  = "Content-Type"
	headerAuthorize    = "Authorization"

	contentTypeJSON = "application/json"

	defaultAgreementVersion = "1"
	maxResponseBytes        = 1 << 20
)
