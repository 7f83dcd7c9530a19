// Package httpapi provides the JSON response envelope and the error
// taxonomy used by every API handler.
//
// Every response has the shape:
//
//	{ "success": bool, "data": any|null, "error": string|null }
//
// Handlers return *httpapi.Error values (or wrap collaborator failures
// with Internal) and let WriteError map them to status codes, so the
// taxonomy lives in one place.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an API failure.
type Kind int

const (
	KindUnauthorized Kind = iota // missing or invalid identity
	KindForbidden                // authenticated but lacking role/ownership
	KindNotFound                 // referenced entity absent
	KindInvalid                  // malformed or out-of-range input
	KindConflict                 // uniqueness violation
	KindInternal                 // unexpected collaborator failure
)

// Error is an API failure with a client-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, logged but never sent to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Invalid(msg string) *Error      { return &Error{Kind: KindInvalid, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }

// Internal wraps an unexpected failure. The cause is kept for logging;
// clients only see a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

func (k Kind) status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// envelope is the wire shape of every API response.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// WriteOK writes a 200 success envelope around data.
func WriteOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// WriteError writes a failure envelope. Unclassified errors are treated
// as internal and logged with their cause; classified errors are logged
// at debug only since they are expected client outcomes.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	if apiErr.Kind == KindInternal && log != nil {
		log.Error("request failed", zap.Error(apiErr))
	}
	msg := apiErr.Msg
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Kind.status())
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &msg})
}
