package service

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fintrackr/backend/internal/store"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("[HTTP] failed to encode response: %v", err)
		}
	}
}

// writeError writes a plain JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidationError surfaces field-level detail for malformed input.
// Validation always runs at the route boundary, before any mutation.
func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}

// writeStoreError maps store failures onto the HTTP taxonomy. Internal
// detail is logged, never returned to the client.
func writeStoreError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, store.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrInvalidPageToken):
		writeError(w, http.StatusBadRequest, "invalid page token")
	default:
		log.Printf("[Service] failed to %s: %v", operation, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
