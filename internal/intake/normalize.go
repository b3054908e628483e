package intake

import (
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/sanitize"
)

// maxInputLen caps any single text field before validation. Field bounds
// are enforced by the validator so overlong input is reported, not cut.
const maxInputLen = 4000

func clean(s string) string {
	return sanitize.Text(s, maxInputLen)
}

func normalizeFull(s *models.FullSubmission) {
	s.ProjectType = clean(s.ProjectType)
	s.Industry = clean(s.Industry)
	s.HasExistingWebsite = clean(s.HasExistingWebsite)
	s.ExistingWebsiteURL = clean(s.ExistingWebsiteURL)
	s.PrimaryGoal = clean(s.PrimaryGoal)
	s.TargetAudience = clean(s.TargetAudience)
	s.Features = sanitize.List(s.Features, maxInputLen)
	s.Description = clean(s.Description)
	s.Budget = clean(s.Budget)
	s.Timeline = clean(s.Timeline)
	s.ContactName = clean(s.ContactName)
	s.ContactEmail = clean(s.ContactEmail)
	s.ContactPhone = clean(s.ContactPhone)
	s.PreferredContact = clean(s.PreferredContact)
	s.Website = clean(s.Website)
}

func normalizeLite(s *models.LiteSubmission) {
	s.ProjectType = clean(s.ProjectType)
	s.PrimaryGoal = clean(s.PrimaryGoal)
	s.BudgetRange = clean(s.BudgetRange)
	s.Timeline = clean(s.Timeline)
	s.PreferredContact = clean(s.PreferredContact)
	s.Features = s.CleanFeatures()
	s.FeatureNotes = clean(s.FeatureNotes)
	s.ContactName = clean(s.ContactName)
	s.ContactEmail = clean(s.ContactEmail)
	s.ContactPhone = clean(s.ContactPhone)
	s.Website = clean(s.Website)
}
