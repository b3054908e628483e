package pages

import (
	"github.com/a-h/templ"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// AdminNotConfigured is shown when no admin token is set.
func AdminNotConfigured() templ.Component {
	return message("Admin nicht konfiguriert", "Setze `ADMIN_DASHBOARD_TOKEN` in der Server-Umgebung.")
}

// AdminUnauthorized is shown for a missing or wrong token.
func AdminUnauthorized() templ.Component {
	return message("Nicht autorisiert", "Oeffne die Seite mit `?token=DEIN_TOKEN`.")
}

// Admin lists stored requests, newest first. loadErr replaces the empty
// state when the store could not be read.
func Admin(rows []*models.ProjectRequest, limit int, loadErr string) templ.Component {
	return layout("Anfragen (Admin)", "", func(h *htmlWriter) {
		h.raw("<h1>Anfragen (Admin)</h1>")
		h.raw(`<p class="muted">Neueste `)
		h.text(itoa(limit))
		h.raw(" Eintraege aus <code>project_requests</code>.</p>")

		if loadErr != "" {
			h.raw(`<div class="banner error">Fehler beim Laden: `)
			h.text(loadErr)
			h.raw("</div>")
			return
		}
		if len(rows) == 0 {
			h.raw(`<div class="banner">Noch keine Anfragen vorhanden.</div>`)
			return
		}

		h.raw(`<div class="list">`)
		for _, row := range rows {
			name := row.ContactName
			if name == "" {
				name = "Ohne Namen"
			}
			h.raw(`<article><div class="top"><h2>`)
			h.text(name)
			h.raw(`</h2><time datetime="`)
			h.attr(row.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
			h.raw(`">`)
			h.text(FormatDate(row.CreatedAt))
			h.raw(`</time></div><div class="grid">`)
			h.field("Projekt", row.ProjectType)
			h.field("Ziel", row.PrimaryGoal)
			h.field("Budget", row.BudgetRange)
			h.field("Timeline", row.Timeline)
			h.field("E-Mail", row.ContactEmail)
			h.field("Telefon", row.ContactPhone)
			h.field("Kontaktweg", row.PreferredContact)
			h.raw("</div>")
			h.field("Features", joinFeatures(row.Features))
			h.field("Notiz", row.Description)
			h.raw("</article>")
		}
		h.raw("</div>")
	})
}
