package web

// errors.go maps errors to HTTP responses.
//
// Every error is logged with its technical text and the request id, then
// returned to the client as an ErrorResponse carrying the coded user message
// from core.MapError. Validation failures also list the offending fields.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
	"github.com/JonMunkholm/ventes/internal/importer"
	"github.com/JonMunkholm/ventes/internal/logging"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Action  string                `json:"action,omitempty"`
	Code    string                `json:"code"`
	Fields  core.ValidationErrors `json:"fields,omitempty"`
}

var errNoFile = errors.New("no file provided")

// requestError is a malformed query parameter or body.
type requestError struct {
	param  string
	reason string
}

func (e *requestError) Error() string {
	return "invalid request: " + e.param + ": " + e.reason
}

func badRequest(param, reason string) error {
	return &requestError{param: param, reason: reason}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		verrs  core.ValidationErrors
		ferr   *core.FormatError
		rerr   *requestError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs), errors.As(err, &ferr), errors.As(err, &rerr),
		errors.Is(err, errNoFile),
		errors.Is(err, core.ErrNothingToExport),
		errors.Is(err, exporter.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrFileTooLarge), errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, core.ErrNothingToImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped ErrorResponse with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var verrs core.ValidationErrors
	var ferr *core.FormatError
	switch {
	case errors.As(err, &verrs):
		resp.Fields = verrs
	case errors.As(err, &ferr):
		// The reason names the exact problem, e.g. the missing header.
		resp.Message = ferr.Reason
	}

	if errors.Is(err, core.ErrBusy) {
		w.Header().Set("Retry-After", "5")
	}
	writeJSONStatus(w, r, statusCode, resp)
}

// fail is respondError with the status derived from err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// writeJSON encodes v as a 200 response.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	writeJSONStatus(w, r, http.StatusOK, v)
}

// writeJSONStatus encodes v with status. Encoding errors are only logged
// since the header is already sent.
func writeJSONStatus(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
