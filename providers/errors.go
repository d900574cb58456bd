package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureKind categorizes adapter failures. Only transient failures are
// retry-eligible; callers must never conflate the two.
type FailureKind string

const (
	// FailureTransient covers timeouts, 5xx responses and explicit
	// rate-limit signals. Retry-eligible.
	FailureTransient FailureKind = "transient"

	// FailurePermanent covers bad input, malformed payloads and confirmed
	// absence. Never retried.
	FailurePermanent FailureKind = "permanent"

	// FailureTimeout is synthesized for adapters still in flight when the
	// race deadline fires.
	FailureTimeout FailureKind = "timeout"
)

// Failure codes.
const (
	CodeNotFound         = "not_found"
	CodeRateLimited      = "rate_limited"
	CodeServerError      = "server_error"
	CodeBadRequest       = "bad_request"
	CodeTransport        = "transport_error"
	CodeMalformedPayload = "malformed_payload"
	CodeTimeout          = "timeout"
	CodeWrongKind        = "wrong_kind"
)

// Failure is the typed error every adapter produces.
type Failure struct {
	Provider   string
	Kind       FailureKind
	Code       string
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", f.Provider, f.Code, f.Message)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (f *Failure) Unwrap() error { return f.Err }

// Is matches failures by kind and, when set on the target, by code.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if t.Code != "" && t.Code != f.Code {
		return false
	}
	return true
}

// Transient builds a retry-eligible failure.
func Transient(provider, code, message string, err error) *Failure {
	return &Failure{Provider: provider, Kind: FailureTransient, Code: code, Message: message, Err: err}
}

// Permanent builds a terminal, never-retried failure.
func Permanent(provider, code, message string, err error) *Failure {
	return &Failure{Provider: provider, Kind: FailurePermanent, Code: code, Message: message, Err: err}
}

// NotFound marks confirmed absence of the record at a provider.
func NotFound(provider, key string) *Failure {
	return &Failure{
		Provider: provider,
		Kind:     FailurePermanent,
		Code:     CodeNotFound,
		Message:  fmt.Sprintf("record not found for %s", key),
	}
}

// MalformedPayload marks a response missing required identity fields or
// otherwise undecodable. Permanent for that adapter only.
func MalformedPayload(provider, message string, err error) *Failure {
	return &Failure{
		Provider: provider,
		Kind:     FailurePermanent,
		Code:     CodeMalformedPayload,
		Message:  message,
		Err:      err,
	}
}

// Timeout is applied to adapters still running when the deadline fires.
func Timeout(provider string) *Failure {
	return &Failure{
		Provider: provider,
		Kind:     FailureTimeout,
		Code:     CodeTimeout,
		Message:  "deadline elapsed before the provider responded",
	}
}

// FromStatus classifies a non-200 HTTP response: 429 and 5xx are transient,
// 404 is confirmed absence, any other 4xx is permanent.
func FromStatus(provider string, status int) *Failure {
	f := &Failure{Provider: provider, StatusCode: status}
	switch {
	case status == http.StatusTooManyRequests:
		f.Kind = FailureTransient
		f.Code = CodeRateLimited
		f.Message = "provider rate limit hit"
	case status >= 500:
		f.Kind = FailureTransient
		f.Code = CodeServerError
		f.Message = fmt.Sprintf("provider returned HTTP %d", status)
	case status == http.StatusNotFound:
		f.Kind = FailurePermanent
		f.Code = CodeNotFound
		f.Message = "record not found"
	default:
		f.Kind = FailurePermanent
		f.Code = CodeBadRequest
		f.Message = fmt.Sprintf("provider rejected the request with HTTP %d", status)
	}
	return f
}

// ClassifyTransport wraps transport-level errors. Context cancellation and
// deadline signals pass through untouched so the race can tell a cancelled
// loser from a genuinely failed call.
func ClassifyTransport(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Transient(provider, CodeTransport, "request failed", err)
}

// IsTransient reports whether the error is retry-eligible.
func IsTransient(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == FailureTransient
	}
	return false
}

// IsPermanent reports whether the error is terminal for the adapter.
func IsPermanent(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == FailurePermanent
	}
	return false
}

// IsTimeout reports whether the failure was synthesized at the deadline.
func IsTimeout(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == FailureTimeout
	}
	return false
}

// IsNotFound reports confirmed absence.
func IsNotFound(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code == CodeNotFound
	}
	return false
}
