// Package telemetry records page views for the dashboard.
package telemetry

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/sanitize"
)

// UnknownPath is recorded when no path can be derived.
const UnknownPath = "unknown"

const (
	maxPathLen   = 200
	maxBodyBytes = 4 << 10
)

// ViewStore appends page views.
type ViewStore interface {
	AppendView(view models.PageView) error
}

// Handler serves POST /api/telemetry/view.
type Handler struct {
	store ViewStore
	now   func() time.Time
}

// NewHandler creates a telemetry handler.
func NewHandler(store ViewStore) *Handler {
	return &Handler{store: store, now: time.Now}
}

type viewRequest struct {
	Path string `json:"path"`
}

// RecordView stores one page view. Bad input is answered with 400; a store
// failure is logged and still answered with 204.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Ungültige Daten"})
		return
	}

	view := models.PageView{
		At:   h.now().UnixMilli(),
		Path: PageName(req.Path),
	}
	if err := h.store.AppendView(view); err != nil {
		log.Printf("telemetry: append view: %v", err)
	} else {
		metrics.PageViewsTotal.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// PageName reduces a pathname to its last segment, falling back to the
// whole pathname and then to UnknownPath.
func PageName(pathname string) string {
	pathname = sanitize.Text(pathname, maxPathLen)
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	segments := strings.Split(pathname, "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	if pathname != "" {
		return pathname
	}
	return UnknownPath
}
