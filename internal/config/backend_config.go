package config

import "time"

type BackendConfig interface {
	GetBackendURL() string
	GetRequestTimeout() time.Duration
	GetDebugRequests() bool
	GetUserAgent() string
}

// GetBackendURL returns the base URL of the auth backend (e.g., "https://api.example.com")
func (c mainConfig) GetBackendURL() string {
	return c.get("BACKEND_URL", "http://localhost:8080")
}

func (c mainConfig) GetRequestTimeout() time.Duration {
	return c.getDuration("REQUEST_TIMEOUT", 30*time.Second)
}

// GetDebugRequests enables debug_info in the auth payload and the X-Debug-Request header
func (c mainConfig) GetDebugRequests() bool {
	return c.getBool("DEBUG_REQUESTS", false)
}

func (c mainConfig) GetUserAgent() string {
	return c.get("USER_AGENT", "twa-auth-client/1.0")
}
