package authsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Login establishes a session for subject. An empty subject lets the server
// pick its configured default user.
func (c *SDKClient) Login(ctx context.Context, subject string) error {
	path := "/auth/login"
	if subject != "" {
		path += "?" + url.Values{"subject": {subject}}.Encode()
	}

	resp, err := c.doRequest(ctx, c.HTTPClient, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return parseErrorResponse(resp, body)
}

// BuildAuthorizeURL returns the URL a browser is sent to for step one.
func (c *SDKClient) BuildAuthorizeURL(clientID, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)

	return fmt.Sprintf("%s/auth/authorization?%s", c.BaseURL, params.Encode())
}

// Authorize runs step one with the current session and returns the code
// from the redirect. It never follows the redirect itself.
func (c *SDKClient) Authorize(ctx context.Context, clientID, redirectURI string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildAuthorizeURL(clientID, redirectURI), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.noRedirect().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusFound {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return "", err
		}
		return "", fmt.Errorf("authorize request returned status %d", resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("redirect response missing Location header")
	}

	redirectURL, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}

	code := redirectURL.Query().Get("code")
	if code == "" {
		return "", errors.New("redirect missing authorization code")
	}

	return code, nil
}
