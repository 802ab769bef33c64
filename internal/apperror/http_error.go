// Package apperror defines the failure kinds used across the service and
// translates them into the external error envelope.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Kind classifies a failure. Only Translate maps a Kind to a transport status.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindConflict
)

// TimestampLayout is the wire format of ApiError.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05"

const internalMessage = "Internal server error"

// Error is a classified failure with a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	parent  *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel this error was derived from, so errors.Is
// matches both the derived error and its parent.
func (e *Error) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithMessage derives an error of the same kind that still matches e via errors.Is.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Kind: e.Kind, Message: message, Details: e.Details, parent: e}
}

// Helpers for common errors
var (
	BadRequest      = func(msg string) *Error { return New(KindBadRequest, msg) }
	Unauthenticated = func(msg string) *Error { return New(KindUnauthenticated, msg) }
	Forbidden       = func(msg string) *Error { return New(KindForbidden, msg) }
	NotFound        = func(msg string) *Error { return New(KindNotFound, msg) }
	Conflict        = func(msg string) *Error { return New(KindConflict, msg) }
)

// Validation reports payload shape failures, one detail per invalid field.
func Validation(details []string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

// ApiError is the envelope written for every failed request.
type ApiError struct {
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Path      string   `json:"path"`
	Timestamp string   `json:"timestamp"`
	Errors    []string `json:"errors"`
}

// StatusFor maps a failure kind to its HTTP status code.
func StatusFor(kind Kind) int {
	switch kind {
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Translate builds the envelope for err. It accepts any error, including nil,
// and falls back to a generic internal error for anything unclassified.
func Translate(err error, path string, now time.Time) ApiError {
	status := http.StatusInternalServerError
	message := internalMessage
	var details []string

	var e *Error
	if errors.As(err, &e) && e != nil && e.Kind != KindInternal {
		status = StatusFor(e.Kind)
		message = e.Message
		if len(e.Details) > 0 {
			details = append([]string(nil), e.Details...)
		}
	}

	return ApiError{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      path,
		Timestamp: now.UTC().Format(TimestampLayout),
		Errors:    details,
	}
}

// IsInternal reports whether err would be translated to a 500.
func IsInternal(err error) bool {
	var e *Error
	return !errors.As(err, &e) || e == nil || e.Kind == KindInternal
}

// Write translates err and writes the envelope. Unclassified failures are
// logged with full detail; the caller only sees the generic message.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := Translate(err, r.URL.Path, time.Now())
	if apiErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
