// Package insights computes the dashboard aggregates over the local store.
package insights

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// NoValue is shown for a missing top page.
const NoValue = "-"

// Metrics are the dashboard counters.
type Metrics struct {
	RequestsTotal  int    `json:"requests_total"`
	RequestsToday  int    `json:"requests_today"`
	RequestsWeek   int    `json:"requests_7d"`
	FeaturePercent int    `json:"feature_percent"`
	ViewsTotal     int    `json:"views_total"`
	ViewsToday     int    `json:"views_today"`
	ViewsWeek      int    `json:"views_7d"`
	TopPage        string `json:"top_page"`
}

// Compute aggregates requests and views relative to now. "Today" starts at
// local midnight of now; the week is the trailing 7*24h.
func Compute(requests []models.LocalRequest, views []models.PageView, now time.Time) Metrics {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	m := Metrics{
		RequestsTotal: len(requests),
		ViewsTotal:    len(views),
		TopPage:       NoValue,
	}

	withFeatures := 0
	for _, r := range requests {
		if !r.CreatedAt.Before(dayStart) {
			m.RequestsToday++
		}
		if !r.CreatedAt.Before(weekStart) {
			m.RequestsWeek++
		}
		if len(r.Features) > 0 {
			withFeatures++
		}
	}
	total := max(1, len(requests))
	m.FeaturePercent = int(math.Round(float64(withFeatures) / float64(total) * 100))

	counts := make(map[string]int)
	var order []string
	for _, v := range views {
		t := v.Time()
		if !t.Before(dayStart) {
			m.ViewsToday++
		}
		if !t.Before(weekStart) {
			m.ViewsWeek++
		}
		if counts[v.Path] == 0 {
			order = append(order, v.Path)
		}
		counts[v.Path]++
	}

	// Ties go to the page seen first, i.e. the most recently viewed.
	best := 0
	for _, path := range order {
		if counts[path] > best {
			best = counts[path]
			m.TopPage = path
		}
	}
	return m
}

// Filter returns the requests whose text fields contain query,
// case-insensitively. An empty query returns all requests.
func Filter(requests []models.LocalRequest, query string) []models.LocalRequest {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return requests
	}

	out := make([]models.LocalRequest, 0, len(requests))
	for _, r := range requests {
		if strings.Contains(haystack(r), q) {
			out = append(out, r)
		}
	}
	return out
}

func haystack(r models.LocalRequest) string {
	return strings.ToLower(strings.Join([]string{
		r.ContactName,
		r.ContactEmail,
		r.ContactPhone,
		r.ProjectType,
		r.PrimaryGoal,
		r.BudgetRange,
		r.Timeline,
		r.PreferredContact,
		r.Description,
		strings.Join(r.Features, " "),
	}, " "))
}

// Export is the downloadable dashboard document.
type Export struct {
	Requests []models.LocalRequest `json:"requests"`
	Views    []models.PageView     `json:"views"`
}

// NewExport builds an export, using empty lists for nil input.
func NewExport(requests []models.LocalRequest, views []models.PageView) *Export {
	if requests == nil {
		requests = []models.LocalRequest{}
	}
	if views == nil {
		views = []models.PageView{}
	}
	return &Export{Requests: requests, Views: views}
}

// JSON returns the export pretty-printed.
func (e *Export) JSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// ExportFilename returns admin_export_YYYY-MM-DD.json for now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("admin_export_%s.json", now.Format("2006-01-02"))
}
