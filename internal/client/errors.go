package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// Operation names used in errors and log entries
const (
	OpListEvents   = "list events"
	OpCreateEvent  = "create event"
	OpGetEvent     = "get event"
	OpListProfiles = "list profiles"
	OpGetProfile   = "get profile"
)

var (
	// ErrSubmitInFlight is returned when a submission is started while another one has not finished yet
	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// ValidationError is returned when a required form field is missing. No request has been made
type ValidationError struct {
	// Field is the name of the offending field ("name" or "description")
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TimeoutError is returned when the server did not answer within the configured time
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response within %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.err
}

// HTTPStatusError is returned when the server answered with a status code that is not considered a success
type HTTPStatusError struct {
	Op         string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: server returned HTTP %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// NetworkError is returned when the request could not be sent or the response could not be received
type NetworkError struct {
	Op  string
	err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.err)
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// ParseError is returned when the response body is not what the client expected
type ParseError struct {
	Op  string
	err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// IsValidation returns true if the error is a *ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTimeout returns true if the error is a *TimeoutError
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// IsHTTPStatus returns true if the error is an *HTTPStatusError
func IsHTTPStatus(err error) bool {
	var target *HTTPStatusError
	return errors.As(err, &target)
}

// IsNetwork returns true if the error is a *NetworkError
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsParse returns true if the error is a *ParseError
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// classify maps the outcome of a request onto the error taxonomy. ctx is the context the request was issued with,
// timeout the limit that has been applied to it
func classify(ctx context.Context, op string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Timeout: timeout, err: err}
	}
	var (
		statusErr *HTTPStatusError
		parseErr  *ParseError
	)
	if errors.As(err, &statusErr) || errors.As(err, &parseErr) {
		return err
	}
	return &NetworkError{Op: op, err: err}
}
