package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doGet(h http.Handler, remote string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.HeaderKeyExtractor("client_id"),
	)

	t.Run("combines extractors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("client_id", "C1")
		require.Equal(t, "192.168.1.1:C1", extract(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?client_id=C9", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", extract(req))
		require.Equal(t, "C9", httpx.QueryKeyExtractor("client_id")(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{Requests: 3, Window: time.Minute, Burst: 3})(okHandler())

		for i := range 3 {
			rec := doGet(h, "192.168.1.1:12345", nil)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := doGet(h, "192.168.1.1:12345", nil)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

		var body httpx.StatusBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, httpx.StatusBody{Code: 429, Message: "Too Many Requests"}, body)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{Requests: 1, Window: time.Minute, Burst: 1})(okHandler())

		require.Equal(t, http.StatusOK, doGet(h, "192.168.1.1:1", nil).Code)
		require.Equal(t, http.StatusTooManyRequests, doGet(h, "192.168.1.1:1", nil).Code)
		require.Equal(t, http.StatusOK, doGet(h, "192.168.1.2:1", nil).Code)
	})

	t.Run("ip and header buckets", func(t *testing.T) {
		h := httpx.RateLimitByIPAndHeader(httpx.RateLimitConfig{Requests: 1, Window: time.Minute, Burst: 1}, "client_id")(okHandler())
		as := func(id string) func(*http.Request) {
			return func(r *http.Request) { r.Header.Set("client_id", id) }
		}

		require.Equal(t, http.StatusOK, doGet(h, "10.0.0.1:1", as("C1")).Code)
		require.Equal(t, http.StatusTooManyRequests, doGet(h, "10.0.0.1:1", as("C1")).Code)
		require.Equal(t, http.StatusOK, doGet(h, "10.0.0.1:1", as("C2")).Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{Requests: 1, Window: time.Minute, Burst: 1}, empty)(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, doGet(h, "192.168.1.1:1", nil).Code)
		}
	})

	t.Run("disabled config passes through", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{})(okHandler())
		for range 50 {
			require.Equal(t, http.StatusOK, doGet(h, "192.168.1.1:1", nil).Code)
		}
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("first"), nil, mark("second"))
	doGet(h, "127.0.0.1:1", nil)

	require.Equal(t, []string{"first", "second"}, order)
}

func TestFirstHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("secret_pass", "legacy")

	require.Equal(t, "legacy", httpx.FirstHeader(req, "secret", "secret_pass"))

	req.Header.Set("secret", "current")
	require.Equal(t, "current", httpx.FirstHeader(req, "secret", "secret_pass"))
	require.Empty(t, httpx.FirstHeader(req, "missing"))
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{Requests: 1_000_000, Window: time.Minute, Burst: 1000})(okHandler())

	b.ResetTimer()
	for range b.N {
		doGet(h, "192.168.1.1:12345", nil)
	}
}
