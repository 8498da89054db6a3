package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/codegrant/pkg/httpx"
)

// APIError is a non-success reply from the service. The server writes it and
// the SDK hands it back to callers, so both sides agree on the shape.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codegrant: %d %s", e.StatusCode, e.Message)
}

// WriteError writes e as {"code":...,"message":...}.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{Code: e.StatusCode, Message: e.Message})
}

// Is matches any *APIError with the same status code, so callers can write
// errors.Is(err, authsdk.ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode
}

func newAPIError(code int) *APIError {
	return &APIError{StatusCode: code, Message: http.StatusText(code)}
}

var (
	// ErrUnauthorized is the single answer to every refused grant step.
	ErrUnauthorized = newAPIError(http.StatusUnauthorized)

	// ErrBadGateway means the code was fine but the access-token issuer failed.
	ErrBadGateway = newAPIError(http.StatusBadGateway)

	ErrTooManyRequests = newAPIError(http.StatusTooManyRequests)
	ErrServerError     = newAPIError(http.StatusInternalServerError)
)

// parseErrorResponse turns an error reply into *APIError, falling back to the
// standard status text when the body is not the usual JSON.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := newAPIError(resp.StatusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
	}

	return apiErr
}
