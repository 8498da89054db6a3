package minter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

var ErrUpstreamStatus = errors.New("unexpected upstream status")

// Remote fetches access tokens from an upstream issuer with a plain GET and
// expects {"access_token": "..."} back.
type Remote struct {
	URL    string
	Client *http.Client
}

// NewRemote builds a Remote on a pooled transport. A zero timeout leaves the
// request bounded by the caller's context only.
func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		URL: url,
		Client: &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   timeout,
		},
	}
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
}

// Mint performs exactly one upstream request.
func (m *Remote) Mint(ctx context.Context) (string, error) {
	client := m.Client
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var body tokenBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return "", fmt.Errorf("decode upstream response: %w", err)
	}
	return body.AccessToken, nil
}
