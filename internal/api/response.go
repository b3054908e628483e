package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// MessageResponse is the body of every JSON answer of the public API.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// MsgNotFound answers unknown API routes.
const MsgNotFound = "Nicht gefunden"
