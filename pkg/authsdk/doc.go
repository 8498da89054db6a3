// Package authsdk is a small Go client for the codegrant service.
//
// A typical caller logs a user in, asks for an authorization code on behalf
// of a registered client and exchanges it for an access token:
//
//	c := authsdk.NewSDKClient("http://localhost:8086")
//	_ = c.Login(ctx, "u1")
//	code, _ := c.Authorize(ctx, "C1", "https://ex/cb")
//	tok, _ := c.ExchangeCode(ctx, "C1", code, "s1")
//
// Every non-success response comes back as *APIError.
package authsdk
