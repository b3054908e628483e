// Package wizard implements the client side of the request flows: the
// in-progress form state, its persistence, and the step navigator.
package wizard

import (
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

// Field names with special handling.
const (
	FieldFeatures    = "features"
	FieldConsent     = "consent"
	FieldHoneypot    = "website"
	FieldFeatureNeed = "featureNeed"
	FieldNotes       = "featureNotes"
)

// FeatureNeedYes enables the feature list in the lite flow.
const FeatureNeedYes = "Ja"

// Field describes one text field of a flow.
type Field struct {
	Name    string
	MaxLen  int
	Options []string // closed set; empty means free text
}

// Step is a named page of the wizard and the fields it owns.
type Step struct {
	Label  string
	Fields []string
}

// Flow is the static definition of a wizard.
type Flow struct {
	Kind          models.Flow
	StorageKey    string
	Steps         []Step
	Fields        []Field
	FeatureMaxLen int
	// FeatureOptions restricts feature values when non-empty.
	FeatureOptions []string
	// MaxFeatures caps the feature list when positive.
	MaxFeatures int
	// RequireFeatures makes the features step demand at least one entry.
	RequireFeatures bool
}

// FullFlow is the four-step project wizard.
var FullFlow = &Flow{
	Kind:       models.FlowFull,
	StorageKey: "arman_project_wizard_v2",
	Steps: []Step{
		{Label: "Basics", Fields: []string{"projectType", "industry", "hasExistingWebsite", "existingWebsiteUrl"}},
		{Label: "Ziele & Features", Fields: []string{"primaryGoal", "targetAudience", FieldFeatures, "description"}},
		{Label: "Rahmen", Fields: []string{"budget", "timeline"}},
		{Label: "Kontakt", Fields: []string{"contactName", "contactEmail", "contactPhone", "preferredContact", FieldConsent}},
	},
	Fields: []Field{
		{Name: "projectType", MaxLen: 60, Options: models.ProjectTypes},
		{Name: "industry", MaxLen: 120},
		{Name: "hasExistingWebsite", MaxLen: 3, Options: models.YesNo},
		{Name: "existingWebsiteUrl", MaxLen: 240},
		{Name: "primaryGoal", MaxLen: 80, Options: models.PrimaryGoals},
		{Name: "targetAudience", MaxLen: 200},
		{Name: "description", MaxLen: 1000},
		{Name: "budget", MaxLen: 40, Options: models.BudgetRanges},
		{Name: "timeline", MaxLen: 40, Options: models.Timelines},
		{Name: "contactName", MaxLen: 90},
		{Name: "contactEmail", MaxLen: 120},
		{Name: "contactPhone", MaxLen: 40},
		{Name: "preferredContact", MaxLen: 40, Options: models.ContactChannels},
		{Name: FieldHoneypot, MaxLen: 80},
	},
	FeatureMaxLen:   60,
	FeatureOptions:  models.Features,
	RequireFeatures: true,
}

// LiteFlow is the reduced request form. Only the contact step has
// requirements.
var LiteFlow = &Flow{
	Kind:       models.FlowLite,
	StorageKey: "arman_request_flow_v3",
	Steps: []Step{
		{Label: "Projekt", Fields: []string{"projectType", "primaryGoal"}},
		{Label: "Features", Fields: []string{FieldFeatureNeed, FieldFeatures, FieldNotes}},
		{Label: "Rahmen", Fields: []string{"budgetRange", "timeline", "preferredContact"}},
		{Label: "Kontakt", Fields: []string{"contactName", "contactEmail", "contactPhone"}},
	},
	Fields: []Field{
		{Name: "projectType", MaxLen: 60},
		{Name: "primaryGoal", MaxLen: 60},
		{Name: FieldFeatureNeed, MaxLen: 12, Options: []string{FeatureNeedYes, "Nein"}},
		{Name: "budgetRange", MaxLen: 60},
		{Name: "timeline", MaxLen: 60},
		{Name: "preferredContact", MaxLen: 60},
		{Name: FieldNotes, MaxLen: 1000},
		{Name: "contactName", MaxLen: 100},
		{Name: "contactEmail", MaxLen: 120},
		{Name: "contactPhone", MaxLen: 40},
		{Name: FieldHoneypot, MaxLen: 80},
	},
	FeatureMaxLen: 60,
	MaxFeatures:   models.MaxLiteFeatures,
}

// Field returns the definition of the named text field.
func (f *Flow) Field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Payload builds the request body the gateway expects for this flow.
func (f *Flow) Payload(s *State) any {
	if f.Kind == models.FlowLite {
		return s.lite()
	}
	return s.full()
}

// Validate checks the whole state against the flow's contract.
func (f *Flow) Validate(s *State) *validation.Issues {
	var issues *validation.Issues
	if f.Kind == models.FlowLite {
		issues = validation.Lite(s.lite())
	} else {
		issues = validation.Full(s.full())
	}
	if f.RequireFeatures && len(s.Features) == 0 {
		issues.Add(FieldFeatures, validation.MsgFeaturesRequired)
	}
	return issues
}

// ValidateStep checks only the fields owned by step.
func (f *Flow) ValidateStep(s *State, step int) *validation.Issues {
	if step < 0 || step >= len(f.Steps) {
		return validation.NewIssues()
	}
	return f.Validate(s).Only(f.Steps[step].Fields...)
}
