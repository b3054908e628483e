package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/good-yellow-bee/anfrage/internal/insights"
	"github.com/good-yellow-bee/anfrage/internal/models"
)

// DashboardView is the data behind the dashboard page.
type DashboardView struct {
	Metrics   insights.Metrics
	Requests  []models.LocalRequest
	Query     string
	CSRFToken string
}

// Dashboard renders the metrics grid, the search form and the request list.
func Dashboard(v DashboardView) templ.Component {
	return layout("Anfragen Dashboard", "", func(h *htmlWriter) {
		h.raw(`<div class="top"><h1>Anfragen Dashboard</h1>`)
		h.raw(`<form method="post" action="/dashboard/logout"><input type="hidden" name="` + csrfFieldName + `" value="`)
		h.attr(v.CSRFToken)
		h.raw(`"><button type="submit">Abmelden</button></form></div>`)

		m := v.Metrics
		h.raw(`<div class="metrics">`)
		metric(h, itoa(m.RequestsTotal), "Anfragen")
		metric(h, itoa(m.RequestsToday), "Anfragen heute")
		metric(h, itoa(m.RequestsWeek), "Anfragen 7 Tage")
		metric(h, itoa(m.FeaturePercent)+"%", "mit Features")
		metric(h, itoa(m.ViewsTotal), "Seitenaufrufe")
		metric(h, itoa(m.ViewsToday), "Aufrufe heute")
		metric(h, itoa(m.ViewsWeek), "Aufrufe 7 Tage")
		metric(h, m.TopPage, "Top Seite")
		h.raw("</div>")

		h.raw(`<div class="toolbar"><form method="get" action="/dashboard">`)
		h.raw(`<input type="search" name="q" placeholder="Suchen..." value="`)
		h.attr(v.Query)
		h.raw(`"> <button type="submit">Filtern</button></form>`)
		h.raw(`<a class="button" href="/dashboard/export">Export JSON</a></div>`)

		if len(v.Requests) == 0 {
			h.raw(`<div class="banner">Noch keine Anfragen vorhanden.</div>`)
			return
		}

		h.raw(`<div class="list">`)
		for _, r := range v.Requests {
			h.raw(`<article><div class="top"><h2>`)
			h.text(orMissing(r.ContactName))
			h.raw("</h2><time>")
			h.text(FormatDate(r.CreatedAt))
			h.raw(`</time></div><div class="grid">`)
			h.field("E-Mail", r.ContactEmail)
			h.field("Telefon", r.ContactPhone)
			h.field("Projekt", r.ProjectType)
			h.field("Ziel", r.PrimaryGoal)
			h.field("Budget", r.BudgetRange)
			h.field("Timing", r.Timeline)
			h.field("Kontaktweg", r.PreferredContact)
			h.field("Features", joinFeatures(r.Features))
			h.field("Notiz", r.Description)
			h.raw("</div></article>")
		}
		h.raw("</div>")
	})
}

func metric(h *htmlWriter, value, label string) {
	h.raw(`<div class="metric"><strong>`)
	h.text(value)
	h.raw("</strong><span>")
	h.text(label)
	h.raw("</span></div>")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
