package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ack reports success with an optional message.
func ack(w http.ResponseWriter, message string) {
	payload := map[string]any{"acknowledged": true}
	if message != "" {
		payload["message"] = message
	}
	writeJSON(w, http.StatusOK, payload)
}

// nack reports an in-band failure: validation problems, missing documents
// and store errors all degrade to acknowledged:false with a readable
// message instead of an HTTP error status.
func nack(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged": false,
		"message":      message,
	})
}

// storeFail logs the underlying error and degrades to a generic
// acknowledged:false response. Store failures never crash a request.
func storeFail(w http.ResponseWriter, logger zerolog.Logger, operation string, err error) {
	logger.Error().Err(err).Str("operation", operation).Msg("store operation failed")
	nack(w, "something went wrong")
}

func decodeBody(r *http.Request, target any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(target)
}
