package relay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// Response messages.
const (
	MsgSent             = "Notification sent"
	MsgFailed           = "Fehler im Notification Service"
	MsgNotConfigured    = "Notifikation nicht konfiguriert"
	MsgMethodNotAllowed = "Methode nicht erlaubt"
	MsgUnauthorized     = "Nicht autorisiert"
)

const maxBodyBytes = 64 << 10

// Notifier sends the relay emails for one summary.
type Notifier interface {
	Notify(ctx context.Context, summary *models.Summary) error
}

type messageResponse struct {
	Message string `json:"message"`
}

func jsonMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(messageResponse{Message: message}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Handler serves POST /functions/notify-project.
type Handler struct {
	notifier   Notifier
	serviceKey string
}

// NewHandler creates a relay handler. When serviceKey is set, callers must
// send it as a bearer token.
func NewHandler(notifier Notifier, serviceKey string) *Handler {
	return &Handler{notifier: notifier, serviceKey: serviceKey}
}

// ServeHTTP handles one notification request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	if h.serviceKey != "" && !bearerMatches(r, h.serviceKey) {
		jsonMessage(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}

	var summary models.Summary
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&summary); err != nil {
		log.Printf("relay: decode summary: %v", err)
		jsonMessage(w, http.StatusInternalServerError, MsgFailed)
		return
	}

	if err := h.notifier.Notify(r.Context(), &summary); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			log.Printf("relay: NOTIFY_EMAIL_TO or NOTIFY_EMAIL_FROM missing")
			jsonMessage(w, http.StatusInternalServerError, MsgNotConfigured)
			return
		}
		log.Printf("relay: notify: %v", err)
		jsonMessage(w, http.StatusInternalServerError, MsgFailed)
		return
	}

	jsonMessage(w, http.StatusOK, MsgSent)
}

func bearerMatches(r *http.Request, key string) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1
}
