// Package pages renders the admin HTML pages as templ components.
package pages

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// csrfFieldName is the form field gorilla/csrf reads by default.
const csrfFieldName = "gorilla.csrf.Token"

// Missing is rendered for empty values.
const Missing = "-"

const stylesheet = `
body{margin:0;font-family:system-ui,-apple-system,"Segoe UI",sans-serif;background:#f8fafc;color:#0f172a}
main{margin:0 auto;max-width:1200px;padding:48px 24px}
main.narrow{max-width:900px;padding-top:80px}
h1{font-size:1.875rem;font-weight:600;margin:0}
.muted{color:#64748b;font-size:.875rem;margin-top:8px}
.banner{margin-top:24px;border-radius:16px;padding:16px;font-size:.875rem;border:1px solid #e2e8f0;background:#fff;color:#475569}
.banner.error{border-color:#fecaca;background:#fef2f2;color:#b91c1c}
.list{margin-top:24px;display:grid;gap:16px}
article{border:1px solid #e2e8f0;border-radius:24px;background:#fff;padding:24px;box-shadow:0 1px 2px rgba(0,0,0,.05)}
.top{display:flex;flex-wrap:wrap;justify-content:space-between;align-items:center;gap:8px}
.top h2{font-size:1.125rem;margin:0}
.top time{font-size:.75rem;color:#64748b}
.grid{margin-top:16px;display:grid;gap:12px;grid-template-columns:repeat(auto-fit,minmax(260px,1fr));font-size:.875rem}
.grid p,article>p{margin:0}
article>p{margin-top:12px;font-size:.875rem;color:#475569}
.metrics{margin-top:24px;display:grid;gap:12px;grid-template-columns:repeat(auto-fit,minmax(160px,1fr))}
.metric{border:1px solid #e2e8f0;border-radius:16px;background:#fff;padding:16px;display:flex;flex-direction:column;gap:4px}
.metric strong{font-size:1.5rem}
.metric span{font-size:.75rem;color:#64748b}
.toolbar{margin-top:24px;display:flex;flex-wrap:wrap;gap:8px;align-items:center}
input{border:1px solid #cbd5e1;border-radius:12px;padding:8px 12px;font-size:.875rem}
button,.button{border:0;border-radius:12px;padding:8px 14px;background:#0f172a;color:#fff;font-size:.875rem;text-decoration:none;cursor:pointer}
.warning{color:#b91c1c;font-size:.875rem;min-height:1.25rem}
`

// htmlWriter writes markup and keeps the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) field(label, value string) {
	h.raw("<p><strong>")
	h.text(label)
	h.raw(":</strong> ")
	h.text(orMissing(value))
	h.raw("</p>")
}

// layout wraps body in the shared document shell.
func layout(title, mainClass string, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="de"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex"><title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(stylesheet)
		h.raw(`</style></head><body><main`)
		if mainClass != "" {
			h.raw(` class="`)
			h.attr(mainClass)
			h.raw(`"`)
		}
		h.raw(">")
		body(h)
		h.raw("</main></body></html>")
		return h.err
	})
}

// message renders a heading with a single explanatory line.
func message(title, text string) templ.Component {
	return layout(title, "narrow", func(h *htmlWriter) {
		h.raw("<h1>")
		h.text(title)
		h.raw(`</h1><p class="muted">`)
		h.text(text)
		h.raw("</p>")
	})
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return Missing
	}
	return s
}

func joinFeatures(features []string) string {
	if len(features) == 0 {
		return Missing
	}
	return strings.Join(features, ", ")
}

// FormatDate renders t like de-DE medium date and short time, in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Missing
	}
	return t.Local().Format("02.01.2006, 15:04")
}
