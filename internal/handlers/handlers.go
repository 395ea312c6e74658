package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"ttconnect/internal/auth"
)

// Handler wraps the storage layer behind StorageInterface so tests can swap
// in a mock, plus the token issuer used by login.
type Handler struct {
	Store StorageInterface
	Auth  *auth.Auth
}

func NewHandler(store StorageInterface, a *auth.Auth) *Handler {
	return &Handler{Store: store, Auth: a}
}

// PingHandler answers "ok" as a liveness check.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform {"error": ...} payload every route uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a request body into dst, capping the body size to avoid
// oversized payloads.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	return true
}
