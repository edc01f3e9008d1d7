package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups failures by the remedy a caller can offer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConnectivity Kind = "connectivity"
	KindAuth         Kind = "auth"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
	KindBusy         Kind = "busy"
	KindNoCredential Kind = "no_credential"
)

// Error represents a typed failure with HTTP awareness.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Status     int    `json:"status"`
	Kind       Kind   `json:"kind"`
	MessageKey string `json:"messageKey"`
	// Local is set when the failure was raised before any network call.
	Local bool  `json:"local"`
	Err   error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so predefined values work with errors.Is after Clone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, kind Kind, messageKey, message string) *Error {
	return &Error{Code: code, Status: status, Kind: kind, MessageKey: messageKey, Message: message}
}

// Wrap attaches a cause to a copy of base.
func Wrap(err error, base *Error, message string) *Error {
	clone := Clone(base, message)
	if clone == nil {
		clone = Clone(ErrServer, message)
	}
	clone.Err = err
	return clone
}

// Local returns a copy of base flagged as raised before any network call.
func Local(base *Error, message string) *Error {
	clone := Clone(base, message)
	if clone != nil {
		clone.Local = true
	}
	return clone
}

// Predefined failures. Status 0 means no HTTP response was received.
var (
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, KindValidation, "errors.validation", "the request is invalid")
	ErrInvalidID    = New("INVALID_ID", http.StatusBadRequest, KindValidation, "errors.invalidId", "invalid identifier")
	ErrInvalidEmail = New("INVALID_EMAIL", http.StatusBadRequest, KindValidation, "errors.invalidEmail", "invalid email address")
	ErrConnectivity = New("NETWORK_ERROR", 0, KindConnectivity, "errors.network", "unable to reach the server, check your connection")
	ErrAuthExpired  = New("AUTH_EXPIRED", http.StatusUnauthorized, KindAuth, "errors.sessionExpired", "your session has expired, please sign in again")
	ErrNoCredential = New("NO_CREDENTIAL", http.StatusUnauthorized, KindNoCredential, "errors.noCredential", "you are not signed in")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, KindNotFound, "errors.notFound", "the requested record was not found")
	ErrConflict     = New("CONFLICT", http.StatusConflict, KindConflict, "errors.conflict", "the record changed on the server")
	ErrProcessed    = New("ALREADY_PROCESSED", http.StatusBadRequest, KindConflict, "errors.alreadyProcessed", "this request has already been processed")
	ErrDuplicate    = New("DUPLICATE_EMAIL", http.StatusBadRequest, KindConflict, "errors.duplicateEmail", "a member with this email already exists")
	ErrMailConfig   = New("MAIL_CONFIG_MISSING", http.StatusInternalServerError, KindServer, "errors.mailConfigMissing", "the server mail configuration is missing")
	ErrServer       = New("SERVER_ERROR", http.StatusInternalServerError, KindServer, "errors.server", "the server failed to process the request")
	ErrBusy         = New("BUSY", http.StatusTooManyRequests, KindBusy, "errors.pleaseWait", "another action is in progress, please wait")
	ErrClosed       = New("CLOSED", http.StatusServiceUnavailable, KindServer, "errors.closed", "the session was closed")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, KindNotFound, "errors.cacheMiss", "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrServer, "")
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
