package microsoft

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// RateLimitError is a single HTTP 429 response. The executor retries it.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
	RequestID  string
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("microsoft: rate limit exceeded, retry after %s", e.RetryAfter)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches domain.ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// RateLimitExceededError is returned when every attempt was rate limited.
type RateLimitExceededError struct {
	Attempts   int
	MaxRetries int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf(
		"microsoft: maximum retries reached without a successful request (attempts: %d, max retries: %d)",
		e.Attempts, e.MaxRetries,
	)
}

// Is matches domain.ErrRateLimited.
func (e *RateLimitExceededError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// APIError is a non-2xx Graph response other than 429.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	URL        string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("microsoft: API error %d", e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg + fmt.Sprintf(" (URL: %s)", e.URL)
}

// graphErrorBody is the error envelope Graph returns with 4xx/5xx responses.
type graphErrorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError struct {
			RequestID string `json:"request-id"`
		} `json:"innerError"`
	} `json:"error"`
}

// newAPIError builds an APIError from a response and its already-read body.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(HeaderRequestID),
	}
	if resp.Request != nil {
		apiErr.URL = resp.Request.URL.String()
	}

	var parsed graphErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Code != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		if apiErr.RequestID == "" {
			apiErr.RequestID = parsed.Error.InnerError.RequestID
		}
	} else if len(body) > 0 {
		apiErr.Message = truncate(string(body), 200)
	}
	return apiErr
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// IsRateLimited reports whether err is a single rate-limited response.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsRateLimitExceeded reports whether err is the terminal retry failure.
func IsRateLimitExceeded(err error) bool {
	var exceeded *RateLimitExceededError
	return errors.As(err, &exceeded)
}

// IsBadRequest checks if the error is a 400 response.
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// WrapError attaches the matching domain sentinel to a Graph error.
// The original error stays reachable through errors.As.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	default:
		return err
	}
}
