package assist

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable is returned when no suggestion backend is configured.
var ErrUnavailable = errors.New("assist: no API key configured")

// TransientError marks a failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

// FatalError marks a failure that retrying will not fix.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }

func transient(err error) error { return &TransientError{err: err} }
func fatal(err error) error     { return &FatalError{err: err} }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsFatal reports whether err is permanent.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// classifyStatus maps a non-200 response: 429 and 5xx are transient,
// everything else is fatal.
func classifyStatus(status int, body []byte) error {
	text := string(body)
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	err := fmt.Errorf("gemini API error (status %d): %s", status, text)
	if status == http.StatusTooManyRequests || status >= 500 {
		return transient(err)
	}
	return fatal(err)
}
