package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// SDKClient talks to one codegrant instance. Its cookie jar carries the
// session set by Login into later Authorize calls.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// noRedirect returns a copy of the HTTP client that stops at the first
// redirect, sharing the transport and cookie jar.
func (c *SDKClient) noRedirect() *http.Client {
	cp := *c.HTTPClient
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}
