// Package handlers contains the HTTP handlers for the public API.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// errorBody is the JSON error envelope every failure response uses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeJSON serializes v with the given status.  Serialization failures at
// this point can only be reported to the log by the caller; the status line
// has already been sent.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAppError maps an application error to its HTTP status and writes the
// error envelope.  Server-side detail stays out of the response body.
func writeAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	var body errorBody
	body.Error.Code = code.String()
	if apperrors.IsClientError(code) {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) && appErr.Message != "" {
			body.Error.Message = appErr.Message
		} else {
			body.Error.Message = apperrors.DefaultMessageForCode(code)
		}
	} else {
		body.Error.Message = apperrors.DefaultMessageForCode(code)
	}
	writeJSON(w, status, body)
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}
