package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StatusBody is the JSON body written for plain status replies,
// e.g. {"code":401,"message":"Unauthorized"}.
type StatusBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as JSON with the given status code. Responses are never
// cacheable; everything this service returns is either a credential or a
// decision about one.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteStatus writes a StatusBody carrying code and its standard status text.
func WriteStatus(w http.ResponseWriter, code int) {
	WriteJSON(w, code, StatusBody{Code: code, Message: http.StatusText(code)})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// FirstHeader returns the first non-blank value among the named headers.
func FirstHeader(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
