package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

func validFull() *models.FullSubmission {
	return &models.FullSubmission{
		ProjectType:        "Website",
		Industry:           "Coaching",
		HasExistingWebsite: "no",
		PrimaryGoal:        "Mehr Anfragen",
		TargetAudience:     "Solo-Coaches",
		Features:           []string{"Terminbuchung"},
		Budget:             "< 1.000 €",
		Timeline:           "ASAP",
		ContactName:        "Mia",
		ContactEmail:       "mia@example.com",
		ContactPhone:       "+49 170 1234567",
		PreferredContact:   "E-Mail",
		Consent:            true,
	}
}

func TestFull_Valid(t *testing.T) {
	if issues := Full(validFull()); !issues.Empty() {
		t.Fatalf("Full() issues = %v, want none", issues)
	}
}

func TestFull_EmptyFeaturesAllowed(t *testing.T) {
	s := validFull()
	s.Features = nil
	if issues := Full(s); !issues.Empty() {
		t.Fatalf("Full() issues = %v, want none", issues)
	}
}

func TestFull_Issues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.FullSubmission)
		field  string
		want   string
	}{
		{
			name:   "existing website without url",
			mutate: func(s *models.FullSubmission) { s.HasExistingWebsite = "yes" },
			field:  "existingWebsiteUrl",
			want:   MsgWebsiteURLRequired,
		},
		{
			name: "existing website with bad url",
			mutate: func(s *models.FullSubmission) {
				s.HasExistingWebsite = "yes"
				s.ExistingWebsiteURL = "coach example"
			},
			field: "existingWebsiteUrl",
			want:  MsgWebsiteURLInvalid,
		},
		{
			name:   "short industry",
			mutate: func(s *models.FullSubmission) { s.Industry = "C" },
			field:  "industry",
			want:   "Bitte gib deine Branche an.",
		},
		{
			name:   "unknown project type",
			mutate: func(s *models.FullSubmission) { s.ProjectType = "App" },
			field:  "projectType",
			want:   MsgInvalidChoice,
		},
		{
			name:   "unknown feature",
			mutate: func(s *models.FullSubmission) { s.Features = []string{"Terminbuchung", "Blockchain"} },
			field:  "features",
			want:   MsgInvalidChoice,
		},
		{
			name:   "bad email",
			mutate: func(s *models.FullSubmission) { s.ContactEmail = "not-an-email" },
			field:  "contactEmail",
			want:   "Bitte gib eine gültige E-Mail-Adresse an.",
		},
		{
			name:   "no consent",
			mutate: func(s *models.FullSubmission) { s.Consent = false },
			field:  "consent",
			want:   "Bitte bestätige die Kontakt-Einwilligung.",
		},
		{
			name:   "description too long",
			mutate: func(s *models.FullSubmission) { s.Description = strings.Repeat("a", 1001) },
			field:  "description",
			want:   "Höchstens 1000 Zeichen.",
		},
		{
			name:   "name counted in runes",
			mutate: func(s *models.FullSubmission) { s.ContactName = strings.Repeat("ä", 81) },
			field:  "contactName",
			want:   "Höchstens 80 Zeichen.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validFull()
			tt.mutate(s)
			issues := Full(s)
			msgs := issues.Field(tt.field)
			if len(msgs) == 0 {
				t.Fatalf("no issue for %s, got %v", tt.field, issues)
			}
			if msgs[0] != tt.want {
				t.Errorf("issue = %q, want %q", msgs[0], tt.want)
			}
		})
	}
}

func TestFull_URLIssueOnlyWhenExistingWebsite(t *testing.T) {
	s := validFull()
	s.HasExistingWebsite = "no"
	s.ExistingWebsiteURL = ""
	if Full(s).Has("existingWebsiteUrl") {
		t.Error("url issue reported although hasExistingWebsite is no")
	}

	s.HasExistingWebsite = "yes"
	s.ExistingWebsiteURL = "https://coach.example"
	if Full(s).Has("existingWebsiteUrl") {
		t.Error("url issue reported for a valid url")
	}
}

func TestLite(t *testing.T) {
	valid := &models.LiteSubmission{
		ContactEmail: "lea@example.com",
		ContactPhone: "0170 123456",
	}
	if issues := Lite(valid); !issues.Empty() {
		t.Fatalf("Lite() issues = %v, want none", issues)
	}

	badPhone := *valid
	badPhone.ContactPhone = "12-34"
	if !Lite(&badPhone).Has("contactPhone") {
		t.Error("expected contactPhone issue for 4 digits")
	}

	noEmail := *valid
	noEmail.ContactEmail = ""
	if !Lite(&noEmail).Has("contactEmail") {
		t.Error("expected contactEmail issue")
	}

	longTag := *valid
	longTag.Features = []string{strings.Repeat("x", 81)}
	if !Lite(&longTag).Has("features") {
		t.Error("expected features issue for an 81-rune tag")
	}
}

func TestSummary(t *testing.T) {
	req := &models.ProjectRequest{
		ProjectType:      "Website",
		Industry:         "Coaching",
		BudgetRange:      "ASAP",
		Timeline:         "ASAP",
		ContactName:      "Mia",
		ContactEmail:     "mia@example.com",
		PreferredContact: "E-Mail",
	}
	if issues := Summary(req.Summary()); !issues.Empty() {
		t.Fatalf("Summary() issues = %v, want none", issues)
	}

	s := req.Summary()
	s.ContactEmail = "broken"
	s.Industry = ""
	issues := Summary(s)
	for _, f := range []string{"contactEmail", "industry"} {
		if !issues.Has(f) {
			t.Errorf("missing issue for %s", f)
		}
	}
}

func TestIssues(t *testing.T) {
	issues := NewIssues()
	if issues.Err() != nil {
		t.Error("empty issues should not be an error")
	}

	issues.Add("industry", "a")
	issues.Add("industry", "a")
	issues.Add("consent", "b")

	if got := issues.Field("industry"); len(got) != 1 {
		t.Errorf("duplicate message kept: %v", got)
	}
	if issues.Err() == nil {
		t.Error("non-empty issues should be an error")
	}

	only := issues.Only("consent", "budget")
	if only.Has("industry") || !only.Has("consent") {
		t.Errorf("Only() = %v", only.Fields())
	}

	data, err := json.Marshal(issues)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string][]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["consent"][0] != "b" {
		t.Errorf("decoded = %v", decoded)
	}

	var nilIssues *Issues
	if !nilIssues.Empty() {
		t.Error("nil issues should be empty")
	}
}
