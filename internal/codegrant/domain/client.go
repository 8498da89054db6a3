package domain

import "time"

// Client is a registered OAuth client. The secret is kept as issued and
// compared verbatim during code exchange.
type Client struct {
	ID          string
	Name        string
	RedirectURI string
	Secret      string
	CreatedAt   time.Time
}
