// Package httputil provides JSON response helpers for REST handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response body", "err", err)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

// WriteError writes the `{"detail": ...}` error payload the API
// contract uses for every non-2xx response.
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, errorBody{Detail: detail})
}

func NotFound(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusNotFound, detail)
}

func InternalError(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusInternalServerError, detail)
}
