package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
	Failed  *int   `json:"failed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}

// writeServiceError maps a service error to its HTTP status
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *storage.PartialInsertError

	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &partial):
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		count, failed := len(partial.Inserted), partial.Failed
		writeJSON(w, http.StatusInternalServerError, map[string]errorBody{
			"error": {
				Code:    "partial_insert",
				Message: "only part of the batch was stored",
				Count:   &count,
				Failed:  &failed,
			},
		})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeBody reads a size-limited JSON body into v, writing the error
// response itself when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds 1MB")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return false
	}
	return true
}
