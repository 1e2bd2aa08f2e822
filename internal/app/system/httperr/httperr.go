// internal/app/system/httperr/httperr.go

// Package httperr writes the API's JSON error and success bodies.
//
// Denied requests get the mapped status code and a generic message —
// internal detail is logged server-side, never exposed to the caller.
package httperr

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NotFound writes 404 {"error":"Not Found"}.
func NotFound(w http.ResponseWriter) {
	JSON(w, http.StatusNotFound, errorBody{Error: "Not Found"})
}

// Unauthorized writes 401 {"error":"Unauthorized"}.
func Unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
}

// Forbidden writes 403 {"error":"Forbidden"}.
func Forbidden(w http.ResponseWriter) {
	JSON(w, http.StatusForbidden, errorBody{Error: "Forbidden"})
}

// BadRequest writes 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// Internal writes 500 with a generic message. The root cause must be
// logged by the caller before calling this; it is not echoed back.
func Internal(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong"})
}
