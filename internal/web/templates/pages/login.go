package pages

import "github.com/a-h/templ"

// Login renders the dashboard password form. warning is shown above the
// form when non-empty.
func Login(csrfToken, warning string) templ.Component {
	return layout("Admin Login", "narrow", func(h *htmlWriter) {
		h.raw(`<h1>Admin Login</h1><p class="muted">Zugang zum Anfragen-Dashboard.</p>`)
		h.raw(`<form method="post" action="/dashboard/login" class="toolbar">`)
		h.raw(`<input type="hidden" name="` + csrfFieldName + `" value="`)
		h.attr(csrfToken)
		h.raw(`"><input type="password" name="password" placeholder="Passwort" autocomplete="current-password" autofocus>`)
		h.raw(`<button type="submit">Weiter</button></form>`)
		h.raw(`<p class="warning" role="alert">`)
		h.text(warning)
		h.raw("</p>")
	})
}
