package http

import (
	"encoding/json"
	stdhttp "net/http"
)

// ErrorBody mirrors the Azure REST error envelope the catalog returns
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the inner error object
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes an error envelope; code defaults to the status text
func Fail(w stdhttp.ResponseWriter, status int, code, msg string) {
	if code == "" {
		code = stdhttp.StatusText(status)
	}
	JSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

// NoContent writes a 204 with no body
func NoContent(w stdhttp.ResponseWriter) { w.WriteHeader(stdhttp.StatusNoContent) }
