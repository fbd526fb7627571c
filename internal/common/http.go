package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("failed to write response: %v", err)
		}
	}
}

// WriteError maps the error taxonomy onto HTTP statuses. Validation failures
// carry the full field map so the client can highlight every offending input.
func WriteError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}

	if IsTransient(err) {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "temporary storage failure, please retry",
		})
		return
	}

	log.Printf("internal error: %v", err)
	WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
