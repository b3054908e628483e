package models

import (
	"strings"
	"time"
)

// FullSubmission is the payload of the full multi-step wizard.
type FullSubmission struct {
	ProjectType        string   `json:"projectType" validate:"required,oneofset=projecttype"`
	Industry           string   `json:"industry" validate:"required,min=2,max=120"`
	HasExistingWebsite string   `json:"hasExistingWebsite" validate:"required,oneofset=yesno"`
	ExistingWebsiteURL string   `json:"existingWebsiteUrl" validate:"omitempty,max=240,url"`
	PrimaryGoal        string   `json:"primaryGoal" validate:"required,oneofset=goal"`
	TargetAudience     string   `json:"targetAudience" validate:"required,min=3,max=200"`
	Features           []string `json:"features" validate:"dive,oneofset=feature"`
	Description        string   `json:"description" validate:"max=1000"`
	Budget             string   `json:"budget" validate:"required,oneofset=budget"`
	Timeline           string   `json:"timeline" validate:"required,oneofset=timeline"`
	ContactName        string   `json:"contactName" validate:"required,min=2,max=80"`
	ContactEmail       string   `json:"contactEmail" validate:"required,emailshape"`
	ContactPhone       string   `json:"contactPhone" validate:"max=40"`
	PreferredContact   string   `json:"preferredContact" validate:"required,oneofset=channel"`
	Consent            bool     `json:"consent" validate:"required"`
	Website            string   `json:"website"`
}

// Honeypot returns the hidden anti-bot field.
func (s *FullSubmission) Honeypot() string { return s.Website }

// ToProjectRequest normalizes the submission into a storable row.
func (s *FullSubmission) ToProjectRequest() *ProjectRequest {
	return &ProjectRequest{
		Flow:               FlowFull,
		ProjectType:        s.ProjectType,
		Industry:           s.Industry,
		HasExistingWebsite: s.HasExistingWebsite == "yes",
		ExistingWebsiteURL: s.ExistingWebsiteURL,
		PrimaryGoal:        s.PrimaryGoal,
		TargetAudience:     s.TargetAudience,
		Features:           nonNil(s.Features),
		Description:        s.Description,
		BudgetRange:        s.Budget,
		Timeline:           s.Timeline,
		ContactName:        s.ContactName,
		ContactEmail:       s.ContactEmail,
		ContactPhone:       s.ContactPhone,
		PreferredContact:   s.PreferredContact,
		Consent:            s.Consent,
	}
}

// MaxLiteFeatures bounds the free-form feature tags of the lite flow.
const MaxLiteFeatures = 20

// LiteSubmission is the payload of the reduced request form.
type LiteSubmission struct {
	ProjectType      string   `json:"projectType" validate:"max=80"`
	PrimaryGoal      string   `json:"primaryGoal" validate:"max=80"`
	BudgetRange      string   `json:"budgetRange" validate:"max=80"`
	Timeline         string   `json:"timeline" validate:"max=80"`
	PreferredContact string   `json:"preferredContact" validate:"max=80"`
	Features         []string `json:"features" validate:"dive,max=80"`
	FeatureNotes     string   `json:"featureNotes" validate:"max=1000"`
	ContactName      string   `json:"contactName" validate:"max=100"`
	ContactEmail     string   `json:"contactEmail" validate:"required,emailshape"`
	ContactPhone     string   `json:"contactPhone" validate:"required,max=40,phonedigits"`
	Website          string   `json:"website"`
}

// Honeypot returns the hidden anti-bot field.
func (s *LiteSubmission) Honeypot() string { return s.Website }

// CleanFeatures trims tags, drops empty ones and keeps at most MaxLiteFeatures.
func (s *LiteSubmission) CleanFeatures() []string {
	cleaned := make([]string, 0, len(s.Features))
	for _, f := range s.Features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		cleaned = append(cleaned, f)
		if len(cleaned) == MaxLiteFeatures {
			break
		}
	}
	return cleaned
}

// ToProjectRequest fills the fields the lite form does not ask for with
// NotSpecified.
func (s *LiteSubmission) ToProjectRequest() *ProjectRequest {
	return &ProjectRequest{
		Flow:               FlowLite,
		ProjectType:        orNotSpecified(s.ProjectType),
		Industry:           NotSpecified,
		HasExistingWebsite: false,
		PrimaryGoal:        orNotSpecified(s.PrimaryGoal),
		TargetAudience:     NotSpecified,
		Features:           s.CleanFeatures(),
		Description:        s.FeatureNotes,
		BudgetRange:        orNotSpecified(s.BudgetRange),
		Timeline:           orNotSpecified(s.Timeline),
		ContactName:        orNotSpecified(s.ContactName),
		ContactEmail:       s.ContactEmail,
		ContactPhone:       s.ContactPhone,
		PreferredContact:   orNotSpecified(s.PreferredContact),
		Consent:            true,
	}
}

// LocalRequest is a submission mirrored into the local store for the
// dashboard. Field names follow the stored row.
type LocalRequest struct {
	CreatedAt        time.Time `json:"created_at"`
	ContactName      string    `json:"contact_name"`
	ContactEmail     string    `json:"contact_email"`
	ContactPhone     string    `json:"contact_phone"`
	ProjectType      string    `json:"project_type"`
	PrimaryGoal      string    `json:"primary_goal"`
	BudgetRange      string    `json:"budget_range"`
	Timeline         string    `json:"timeline"`
	PreferredContact string    `json:"preferred_contact"`
	Features         []string  `json:"features"`
	Description      string    `json:"description"`
}

// LocalRequestFrom projects a stored request into the local-store shape.
func LocalRequestFrom(p *ProjectRequest) LocalRequest {
	return LocalRequest{
		CreatedAt:        p.CreatedAt,
		ContactName:      p.ContactName,
		ContactEmail:     p.ContactEmail,
		ContactPhone:     p.ContactPhone,
		ProjectType:      p.ProjectType,
		PrimaryGoal:      p.PrimaryGoal,
		BudgetRange:      p.BudgetRange,
		Timeline:         p.Timeline,
		PreferredContact: p.PreferredContact,
		Features:         nonNil(p.Features),
		Description:      p.Description,
	}
}

// PageView is one recorded page visit. At is unix milliseconds.
type PageView struct {
	At   int64  `json:"at"`
	Path string `json:"path"`
}

// Time returns At as a time.Time.
func (v PageView) Time() time.Time {
	return time.UnixMilli(v.At)
}

func orNotSpecified(s string) string {
	if s == "" {
		return NotSpecified
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
