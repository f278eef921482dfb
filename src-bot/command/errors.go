package command

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"racbot/src-bot/api"
)

var ErrEmptyResult = errors.New("empty result")

// HTTPError is a remote status outside the OK set, or a timeout reported
// as 504.
type HTTPError struct {
	Status int
	Reason string
	Body   api.Body
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Exception: %d (%s)", e.Status, e.Reason)
}

// ShapeError is a successful response whose payload can't be rendered.
type ShapeError struct {
	Want string
	Got  string
	Err  error
}

func (e *ShapeError) Error() string {
	switch {
	case e.Err != nil && e.Want != "":
		return fmt.Sprintf("unexpected response shape: %s: %v", e.Want, e.Err)
	case e.Err != nil:
		return "unexpected response shape: " + e.Err.Error()
	default:
		return fmt.Sprintf("unexpected response shape: want %s, got %s", e.Want, e.Got)
	}
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Arg     string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type UsageError struct {
	Command *Command
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Command.Name, e.Reason)
}

type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("You are on cooldown. Try again in %d seconds.", e.Seconds())
}

// Seconds rounds up so "0 seconds" is never shown.
func (e *CooldownError) Seconds() int {
	s := int(math.Ceil(e.RetryAfter.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

type PermissionError struct {
	Command string
	Reason  string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// InternalError wraps anything unclassified. It is a defect.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error"
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Classify maps err onto the taxonomy. Known command errors pass through,
// *api.Failure is translated, and everything else becomes InternalError.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		httpErr  *HTTPError
		shape    *ShapeError
		valid    *ValidationError
		usage    *UsageError
		cooldown *CooldownError
		perm     *PermissionError
		internal *InternalError
		failure  *api.Failure
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &shape):
		return shape
	case errors.As(err, &valid):
		return valid
	case errors.As(err, &usage):
		return usage
	case errors.As(err, &cooldown):
		return cooldown
	case errors.As(err, &perm):
		return perm
	case errors.As(err, &internal):
		return internal
	case errors.Is(err, ErrEmptyResult):
		return &ShapeError{Err: err}
	case errors.As(err, &failure):
		return fromFailure(failure)
	}
	return &InternalError{Err: err}
}

func fromFailure(f *api.Failure) error {
	switch f.Kind {
	case api.FailureTimeout:
		return &HTTPError{Status: http.StatusGatewayTimeout, Reason: http.StatusText(http.StatusGatewayTimeout)}
	case api.FailureNonOKStatus:
		return &HTTPError{Status: f.Status, Reason: f.Reason, Body: f.Body}
	case api.FailureBadMimeType:
		return &ShapeError{Want: "json", Got: f.Detail}
	default:
		return &InternalError{Err: f}
	}
}

// class is the label used for logs and metrics.
func class(err error) string {
	var (
		httpErr *HTTPError
		shape   *ShapeError
		valid   *ValidationError
		usage   *UsageError
		cool    *CooldownError
		perm    *PermissionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusGatewayTimeout {
			return "timeout"
		}
		return "http_error"
	case errors.As(err, &shape):
		return "shape"
	case errors.As(err, &valid):
		return "validation"
	case errors.As(err, &usage):
		return "usage"
	case errors.As(err, &cool):
		return "cooldown"
	case errors.As(err, &perm):
		return "permission"
	default:
		return "internal"
	}
}
