package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// The statistics engine sorts provider failures into four kinds.
// Authentication and permission failures propagate to the caller so it
// can decide between retry and re-consent; everything else degrades at
// the per-call level.
var (
	ErrAuthenticationExpired = errors.New("google authentication expired")
	ErrPermissionScope       = errors.New("google token lacks required scope")
	ErrRateLimited           = errors.New("provider rate limit exceeded")
)

// classifyProviderError maps raw Gmail API errors onto the taxonomy
// above. Unrecognized errors pass through unchanged and are treated as
// transient by the aggregator.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		// invalid_grant means the refresh token itself is dead
		return fmt.Errorf("%w: %s", ErrAuthenticationExpired, retrieveErr.ErrorCode)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthenticationExpired, apiErr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	case http.StatusForbidden:
		for _, item := range apiErr.Errors {
			switch item.Reason {
			case "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded", "quotaExceeded":
				return fmt.Errorf("%w: %s", ErrRateLimited, item.Reason)
			}
		}
		return fmt.Errorf("%w: %s", ErrPermissionScope, apiErr.Message)
	}
	return err
}

// isCredentialError reports whether err must propagate instead of
// degrading to zero.
func isCredentialError(err error) bool {
	return errors.Is(err, ErrAuthenticationExpired) || errors.Is(err, ErrPermissionScope)
}

// isRetryable reports whether a single backoff-then-retry is worth it.
func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) && !errors.Is(err, context.DeadlineExceeded)
}
