package notifier

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

//go:embed templates/*
var templateFS embed.FS

// Placeholders for empty summary fields.
const (
	NoFeatures  = "Keine besonderen Features"
	EmptyMarker = "—"
)

// Subjects of the two relay emails.
const (
	ApplicantSubject = "Danke für deine Projektanfrage"
	operatorSubject  = "Neue Projektanfrage von %s"
)

// OperatorSubject returns the subject of the operator summary.
func OperatorSubject(name string) string {
	return fmt.Sprintf(operatorSubject, name)
}

// Templates holds parsed email templates.
type Templates struct {
	operatorHTML  *htmltemplate.Template
	operatorText  *texttemplate.Template
	applicantHTML *htmltemplate.Template
	applicantText *texttemplate.Template
}

// TemplateData contains data for template rendering. Empty values are
// already replaced with their placeholders.
type TemplateData struct {
	ProjectType      string
	Industry         string
	Budget           string
	Timeline         string
	Features         string
	Description      string
	ContactName      string
	ContactEmail     string
	ContactPhone     string
	PreferredContact string
}

// SummaryToTemplateData flattens a summary for rendering.
func SummaryToTemplateData(s *models.Summary) *TemplateData {
	features := NoFeatures
	if len(s.Features) > 0 {
		features = strings.Join(s.Features, ", ")
	}
	return &TemplateData{
		ProjectType:      s.ProjectType,
		Industry:         s.Industry,
		Budget:           s.Budget,
		Timeline:         s.Timeline,
		Features:         features,
		Description:      orEmptyMarker(s.Description),
		ContactName:      s.ContactName,
		ContactEmail:     s.ContactEmail,
		ContactPhone:     orEmptyMarker(s.ContactPhone),
		PreferredContact: s.PreferredContact,
	}
}

// LoadTemplates loads embedded email templates.
func LoadTemplates() (*Templates, error) {
	t := &Templates{}
	var err error

	if t.operatorHTML, err = htmltemplate.ParseFS(templateFS, "templates/operator.html"); err != nil {
		return nil, fmt.Errorf("parse operator html: %w", err)
	}
	if t.operatorText, err = texttemplate.ParseFS(templateFS, "templates/operator.txt"); err != nil {
		return nil, fmt.Errorf("parse operator text: %w", err)
	}
	if t.applicantHTML, err = htmltemplate.ParseFS(templateFS, "templates/applicant.html"); err != nil {
		return nil, fmt.Errorf("parse applicant html: %w", err)
	}
	if t.applicantText, err = texttemplate.ParseFS(templateFS, "templates/applicant.txt"); err != nil {
		return nil, fmt.Errorf("parse applicant text: %w", err)
	}
	return t, nil
}

// Operator renders the operator summary (HTML, plain).
func (t *Templates) Operator(data *TemplateData) (string, string, error) {
	var html, text bytes.Buffer
	if err := t.operatorHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	if err := t.operatorText.Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}

// Applicant renders the acknowledgment (HTML, plain).
func (t *Templates) Applicant(data *TemplateData) (string, string, error) {
	var html, text bytes.Buffer
	if err := t.applicantHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	if err := t.applicantText.Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}

func orEmptyMarker(s string) string {
	if strings.TrimSpace(s) == "" {
		return EmptyMarker
	}
	return s
}
