package apiserver

import (
	"encoding/json"
	"log"
	"net/http"

	"social-go/internal/services"
)

// ErrorResponse is the JSON error body returned by the API server.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; nothing more we can tell the client.
			log.Printf("api: encoding JSON response: %v", err)
		}
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps a service error to a response, hiding internal
// details behind a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	status := services.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("api: internal error: %v", err)
		writeJSONError(w, "internal error", status)
		return
	}
	writeJSONError(w, err.Error(), status)
}
