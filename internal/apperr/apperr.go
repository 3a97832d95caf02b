// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr maps raw failures from external calls and input checks
// into a closed taxonomy of error kinds. Classification is total: every
// error reaches exactly one kind, defaulting to KindUnknown. The classified
// value is reporting data; the only control-flow decision taken from it is
// retryability.
package apperr

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/hypothesis-engine/internal/httputil"
)

// Kind is one of the six failure categories.
type Kind string

const (
	KindInputValidation Kind = "input_validation"
	KindAPIConnection   Kind = "api_connection"
	KindRateLimit       Kind = "rate_limit"
	KindAuthentication  Kind = "authentication"
	KindServerError     Kind = "server_error"
	KindUnknown         Kind = "unknown"
)

// Error is a classified failure. Status is the remote HTTP status when one
// was received, 0 otherwise.
type Error struct {
	Kind    Kind      `json:"type"`
	Message string    `json:"message"`
	Detail  string    `json:"details,omitempty"`
	Status  int       `json:"-"`
	Time    time.Time `json:"timestamp"`
	cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation builds an input-validation failure for a locally rejected
// request. These are terminal: they are never retried and never reach the
// remote call.
func Validation(detail string) *Error {
	return &Error{
		Kind:    KindInputValidation,
		Message: "Invalid input",
		Detail:  detail,
		Time:    time.Now(),
	}
}

// Classify maps err into the taxonomy. An already classified *Error passes
// through unchanged. Precedence: remote status code, then transport-level
// failure, then word-count validation wording, then unknown.
func Classify(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	e := &Error{
		Kind:    KindUnknown,
		Message: "An unexpected error occurred",
		Detail:  err.Error(),
		Time:    time.Now(),
		cause:   err,
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		e.Status = statusErr.StatusCode
		switch {
		case statusErr.StatusCode == 400:
			e.Kind = KindInputValidation
			e.Message = "Invalid input"
			e.Detail = "Please check your input and try again"
		case statusErr.StatusCode == 401 || statusErr.StatusCode == 403:
			e.Kind = KindAuthentication
			e.Message = "Authentication error"
			e.Detail = "Please check your API keys"
		case statusErr.StatusCode == 429:
			e.Kind = KindRateLimit
			e.Message = "Rate limit exceeded"
			e.Detail = "Please try again later"
		case statusErr.StatusCode >= 500:
			e.Kind = KindServerError
			e.Message = "Server error"
			e.Detail = "The server encountered an error. Please try again later"
		}
		return e
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		e.Kind = KindAPIConnection
		e.Message = "Connection error"
		e.Detail = "Could not connect to the server"
		return e
	}

	if strings.Contains(err.Error(), "word") {
		e.Kind = KindInputValidation
		e.Message = "Input validation error"
		e.Detail = err.Error()
		return e
	}

	return e
}

// Retryable reports whether err is worth another attempt. Validation and
// authentication failures are terminal, as is any explicit 4xx status other
// than 429; connection, rate-limit, server, and unknown failures retry.
func Retryable(err error) bool {
	e := Classify(err)
	if e.Kind == KindInputValidation || e.Kind == KindAuthentication {
		return false
	}
	if e.Status >= 400 && e.Status < 500 && e.Status != 429 {
		return false
	}
	return true
}
