package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// Sentinels for the Google API failures callers act on.
var (
	ErrUnauthorized = errors.New("google: unauthorised (invalid or revoked refresh token)")
	ErrForbidden    = errors.New("google: forbidden (calendar not shared with this account)")
	ErrNotFound     = errors.New("google: resource not found")
	ErrRateLimited  = fmt.Errorf("google: %w", domain.ErrRateLimited)
)

// statusErrors maps HTTP status codes to sentinels. A deleted event
// answers 410 Gone and counts as missing.
var statusErrors = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusForbidden:       ErrForbidden,
	http.StatusNotFound:        ErrNotFound,
	http.StatusGone:            ErrNotFound,
	http.StatusTooManyRequests: ErrRateLimited,
}

// classify returns the sentinel for err, or nil.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return statusErrors[gerr.Code]
	}
	return nil
}

func is(err, sentinel error) bool {
	return errors.Is(err, sentinel) || classify(err) == sentinel
}

// IsUnauthorized reports whether err means the credentials were rejected.
func IsUnauthorized(err error) bool { return is(err, ErrUnauthorized) }

// IsForbidden reports whether err means the account lacks access.
func IsForbidden(err error) bool { return is(err, ErrForbidden) }

// IsNotFound reports whether err means the resource does not exist (any more).
func IsNotFound(err error) bool { return is(err, ErrNotFound) }

// IsRateLimited reports whether err means the quota was exceeded.
func IsRateLimited(err error) bool { return is(err, ErrRateLimited) }

// WrapError puts the matching sentinel in front of a Google API error.
// The original error stays in the chain; unclassified errors are returned as is.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if sentinel := classify(err); sentinel != nil && !errors.Is(err, sentinel) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// RetryAfter returns the delay requested by a 429 response's Retry-After
// header, or zero.
func RetryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
