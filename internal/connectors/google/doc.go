// Package google provides shared infrastructure for the Google Calendar connector.
//
// This package contains:
//   - A refreshing oauth2.TokenSource built from a stored refresh token
//   - The Calendar service factory
//   - Error classification for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, creds)
//	svc, err := google.NewCalendarService(ctx, ts)
//
// # OAuth2 Scopes
//
// The connector needs https://www.googleapis.com/auth/calendar.events to read
// the source calendar and write the destination calendar. The refresh token is
// obtained once, outside this program, and stored in the config file or the
// environment.
package google
