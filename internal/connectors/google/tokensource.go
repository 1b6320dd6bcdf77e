package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// Google's OAuth2 endpoints.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// CalendarScope grants read and write access to events.
const CalendarScope = "https://www.googleapis.com/auth/calendar.events"

// Credentials are the stored OAuth client and refresh token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate reports missing fields.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return fmt.Errorf("%w: google client_id, client_secret and refresh_token are required", domain.ErrInvalidInput)
	}
	return nil
}

// NewTokenSource returns a token source that refreshes access tokens from
// the stored refresh token and caches them until expiry.
func NewTokenSource(ctx context.Context, creds Credentials) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     Endpoint,
		Scopes:       []string{CalendarScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}
