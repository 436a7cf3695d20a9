package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/service"
)

type closedResponse struct {
	Error    string    `json:"error"`
	Reason   string    `json:"reason"`
	Deadline time.Time `json:"deadline"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// writeServiceError maps a service error to a response. op names the
// failed operation in logs.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var closed *service.ClosedError
	var invalid *service.ValidationError

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalid.Message, "field": invalid.Field})
	case errors.As(err, &closed):
		writeJSON(w, http.StatusConflict, closedResponse{
			Error:    "ordering is closed",
			Reason:   closed.Reason,
			Deadline: closed.Deadline,
		})
	case errors.Is(err, service.ErrNotFound):
		log.Printf("WARN: %s: %v", op, err)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable, try again later"})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
