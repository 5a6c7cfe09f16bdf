package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error that knows how to present itself to an HTTP
// caller. Status is the HTTP status code, Code the stable application-level
// error code used by clients and telemetry.
type Error struct {
	Status      int    `json:"-"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func (e *Error) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Description)
	}
	return e.Message
}

// WithDescription returns a copy of the error carrying additional context for
// the caller. The original (typically one of the sentinel values below) is
// left untouched so errors.Is keeps working.
func (e *Error) WithDescription(description string) *Error {
	clone := *e
	clone.Description = description
	return &clone
}

// Is matches on the application code so descripted copies still compare equal
// to their sentinel.
func (e *Error) Is(target error) bool {
	var appErr *Error
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code && e.Status == appErr.Status
}

// Token verification and gateway errors. The codes are part of the client
// contract and must stay stable.
var (
	ErrTokenExpired        = &Error{Status: http.StatusUnauthorized, Code: 1, Message: "Token has expired."}
	ErrTokenClaimsInvalid  = &Error{Status: http.StatusUnauthorized, Code: 2, Message: "Invalid claims. Please verify the audience and issuer."}
	ErrTokenSignature      = &Error{Status: http.StatusUnauthorized, Code: 3, Message: "Invalid token signature."}
	ErrJWKSKeyNotFound     = &Error{Status: http.StatusUnauthorized, Code: 4, Message: "No key could be found in JWKS corresponding to the token's kid."}
	ErrSessionNotFound     = &Error{Status: http.StatusUnauthorized, Code: 5, Message: "No session could be found."}
	ErrNoRouteConfigured   = &Error{Status: http.StatusInternalServerError, Code: 500, Message: "No route configuration could be found."}
	ErrUpstreamCallFailed  = &Error{Status: http.StatusBadGateway, Code: 502, Message: "The upstream call failed."}
	ErrManagementAPIFailed = &Error{Status: http.StatusInternalServerError, Code: 500, Message: "The identity provider management API call failed."}
	ErrUnknown             = &Error{Status: http.StatusInternalServerError, Code: 500, Message: "Unknown Error"}
)

type errorEnvelope struct {
	Error *Error `json:"error"`
}

// WriteJSON writes err as the standard error body
// {"error":{code,message,description?}}. Errors that are not application
// errors are masked behind ErrUnknown so internals never leak to callers.
func WriteJSON(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrUnknown
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: appErr})
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
