package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeInternalError logs the cause and responds with a generic message so
// internal details never leak to clients.
func writeInternalError(w http.ResponseWriter, r *http.Request, what string, err error) {
	zctx.From(r.Context()).Error(what, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
