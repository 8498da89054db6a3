package service

import "errors"

// Request level failures. All of them are reported to the caller as the same
// generic 401; the specific reason only ever reaches the logs.
var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrInvalidRequest         = errors.New("invalid_request")
	ErrUnknownClient          = errors.New("unknown_client")
	ErrRedirectMismatch       = errors.New("redirect_mismatch")
	ErrExpiredOrMalformedCode = errors.New("expired_or_malformed_code")
	ErrSecretMismatch         = errors.New("secret_mismatch")
)

// ErrUpstreamMint means the access token supplier failed. It is a backend
// fault, not a bad request.
var ErrUpstreamMint = errors.New("upstream_mint_failure")

// ErrSessionUnavailable means no session mechanism is wired in front of the
// authorization endpoint at all. Misconfiguration, never "not logged in".
var ErrSessionUnavailable = errors.New("session mechanism unavailable")

var denials = []error{
	ErrUnauthenticated,
	ErrInvalidRequest,
	ErrUnknownClient,
	ErrRedirectMismatch,
	ErrExpiredOrMalformedCode,
	ErrSecretMismatch,
}

// IsDenial reports whether err is a request level failure that must collapse
// into the uniform unauthorized response.
func IsDenial(err error) bool {
	for _, d := range denials {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
