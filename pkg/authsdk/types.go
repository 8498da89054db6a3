package authsdk

// TokenResponse is the body of a successful GET /auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ErrorResponse is the uniform error body, e.g.
// {"code":401,"message":"Unauthorized"}.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Uptime is the service uptime as a duration string (e.g. "1h23m45s").
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	// Checks is only filled in by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each readiness dependency.
type HealthChecks struct {
	// Clients is the client registry source.
	Clients string `json:"clients"`

	// Signer is the authorization code sign and verify round trip.
	Signer string `json:"signer"`
}
