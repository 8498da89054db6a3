package domain

// AuthorizationResult is where the user agent is sent after a successful
// authorization, and the code it carries.
type AuthorizationResult struct {
	RedirectURI string
	Code        string
}
