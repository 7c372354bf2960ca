// ABOUTME: Typed handler errors carrying HTTP status and machine-readable codes.
// ABOUTME: Writes small JSON error bodies; internal causes are logged, never leaked.

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Machine-readable error codes surfaced in response bodies.
const (
	CodeInvalidTenant  = "InvalidTenant"
	CodeNotFound       = "NotFound"
	CodeInternalError  = "InternalError"
	CodeGatewayTimeout = "GatewayTimeout"
)

// HandlerError is a classified request failure. Code and Status are surfaced
// to the client; Err is the internal cause, logged and never written to the
// response body.
type HandlerError struct {
	Code   string
	Status int
	Err    error
}

func (e *HandlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

func invalidTenant(err error) *HandlerError {
	return &HandlerError{Code: CodeInvalidTenant, Status: http.StatusBadRequest, Err: err}
}

func notFound(path string) *HandlerError {
	return &HandlerError{
		Code:   CodeNotFound,
		Status: http.StatusNotFound,
		Err:    fmt.Errorf("resource not found %q", path),
	}
}

func internalError(op string, err error) *HandlerError {
	return &HandlerError{
		Code:   CodeInternalError,
		Status: http.StatusInternalServerError,
		Err:    fmt.Errorf("%s: %w", op, err),
	}
}

func gatewayTimeout() *HandlerError {
	return &HandlerError{
		Code:   CodeGatewayTimeout,
		Status: http.StatusGatewayTimeout,
		Err:    errors.New("no terminal directive within the session deadline"),
	}
}

// errorBody is the JSON payload written for every error response.
type errorBody struct {
	Code string `json:"code"`
}

// writeHandlerError logs the failure and writes its JSON body. Errors that
// are not HandlerError values are classified as internal.
func writeHandlerError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var herr *HandlerError
	if !errors.As(err, &herr) {
		herr = internalError("handling request", err)
	}

	if herr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", herr.Code, "error", herr.Err)
	} else {
		logger.Debug("request rejected", "code", herr.Code, "error", herr.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(herr.Status)
	if encodeErr := json.NewEncoder(w).Encode(errorBody{Code: herr.Code}); encodeErr != nil {
		logger.Error("writing error body", "error", encodeErr)
	}
}
