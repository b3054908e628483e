package models

import (
	"time"
)

// NotSpecified is stored for classification fields the lite flow leaves out.
const NotSpecified = "Nicht angegeben"

// Flow identifies which intake contract produced a request.
type Flow string

const (
	FlowFull Flow = "full"
	FlowLite Flow = "lite"
)

// Closed value sets of the full contract.
var (
	ProjectTypes = []string{
		"Website",
		"Website + internes System",
		"nur internes System",
	}

	PrimaryGoals = []string{
		"Mehr Anfragen",
		"Termine",
		"Bestellungen",
		"Information/Brand",
	}

	Features = []string{
		"Terminbuchung",
		"Bestellfunktion",
		"Kundenkonto/Portal",
		"Admin-Dashboard",
		"Automationen",
		"KI-Funktion",
	}

	BudgetRanges = []string{
		"< 1.000 €",
		"1.000–3.000 €",
		"3.000–7.000 €",
		"7.000 €+",
	}

	Timelines = []string{
		"ASAP",
		"2–4 Wochen",
		"1–2 Monate",
		"flexibel",
	}

	ContactChannels = []string{
		"E-Mail",
		"Telefon",
		"WhatsApp",
	}

	YesNo = []string{"yes", "no"}
)

// ProjectRequest is a stored project inquiry. It is created once by the
// intake gateway and never mutated afterwards.
type ProjectRequest struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Flow               Flow      `json:"flow"`
	ProjectType        string    `json:"project_type"`
	Industry           string    `json:"industry"`
	HasExistingWebsite bool      `json:"has_existing_website"`
	ExistingWebsiteURL string    `json:"existing_website_url,omitempty"`
	PrimaryGoal        string    `json:"primary_goal"`
	TargetAudience     string    `json:"target_audience"`
	Features           []string  `json:"features"`
	Description        string    `json:"description"`
	BudgetRange        string    `json:"budget_range"`
	Timeline           string    `json:"timeline"`
	ContactName        string    `json:"contact_name"`
	ContactEmail       string    `json:"contact_email"`
	ContactPhone       string    `json:"contact_phone,omitempty"`
	PreferredContact   string    `json:"preferred_contact"`
	Consent            bool      `json:"consent"`
}

// Summary returns the flattened view sent to the notification relay.
func (p *ProjectRequest) Summary() *Summary {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &Summary{
		ProjectType:      p.ProjectType,
		Industry:         p.Industry,
		Budget:           p.BudgetRange,
		Timeline:         p.Timeline,
		Features:         features,
		Description:      p.Description,
		ContactName:      p.ContactName,
		ContactEmail:     p.ContactEmail,
		ContactPhone:     p.ContactPhone,
		PreferredContact: p.PreferredContact,
	}
}

// Summary is the notification payload. It carries no honeypot or consent data.
type Summary struct {
	ProjectType      string   `json:"projectType" validate:"required"`
	Industry         string   `json:"industry" validate:"required"`
	Budget           string   `json:"budget" validate:"required"`
	Timeline         string   `json:"timeline" validate:"required"`
	Features         []string `json:"features" validate:"required"`
	Description      string   `json:"description,omitempty"`
	ContactName      string   `json:"contactName" validate:"required"`
	ContactEmail     string   `json:"contactEmail" validate:"required,emailshape"`
	ContactPhone     string   `json:"contactPhone,omitempty"`
	PreferredContact string   `json:"preferredContact" validate:"required"`
}

// Contains reports whether value is a member of set.
func Contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
