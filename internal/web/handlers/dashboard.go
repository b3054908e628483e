package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/good-yellow-bee/anfrage/internal/insights"
	"github.com/good-yellow-bee/anfrage/internal/web/templates/pages"
)

func (h *Handler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	if GetSession(r) == nil {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	requests, views := h.local.Snapshot()
	query := r.URL.Query().Get("q")

	setHTML(w, http.StatusOK)
	pages.Dashboard(pages.DashboardView{
		Metrics:   insights.Compute(requests, views, h.now()),
		Requests:  insights.Filter(requests, query),
		Query:     query,
		CSRFToken: csrf.Token(r),
	}).Render(r.Context(), w)
}

// Export downloads both local-store lists as one JSON document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if GetSession(r) == nil {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	requests, views := h.local.Snapshot()
	data, err := insights.NewExport(requests, views).JSON()
	if err != nil {
		log.Printf("dashboard: encode export: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+insights.ExportFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("dashboard: write export: %v", err)
	}
}
