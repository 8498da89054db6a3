package authsdk

import (
	"context"
	"net/http"
)

// ExchangeCode runs step two: it trades code plus the client's credentials
// for an access token. The credentials travel as request headers.
func (c *SDKClient) ExchangeCode(ctx context.Context, clientID, code, secret string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, c.HTTPClient, http.MethodGet, "/auth/token", map[string]string{
		"client_id": clientID,
		"code":      code,
		"secret":    secret,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}

	return &tok, nil
}
