package wizard

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/sanitize"
)

// ErrUnknownField is returned when a field is not part of the flow.
var ErrUnknownField = errors.New("unknown field")

// State is the in-progress form of one flow plus the current step.
type State struct {
	Step     int               `json:"step"`
	Values   map[string]string `json:"values"`
	Features []string          `json:"features"`
	Consent  bool              `json:"consent"`
}

func newState() *State {
	return &State{Values: make(map[string]string), Features: []string{}}
}

// Get returns the value of a text field.
func (s *State) Get(name string) string {
	return s.Values[name]
}

func (s *State) clone() State {
	c := State{
		Step:     s.Step,
		Values:   make(map[string]string, len(s.Values)),
		Features: append([]string{}, s.Features...),
		Consent:  s.Consent,
	}
	for k, v := range s.Values {
		c.Values[k] = v
	}
	return c
}

// set sanitizes value and stores it. Values outside a closed set are rejected.
func (s *State) set(flow *Flow, name, value string) error {
	fd, ok := flow.Field(name)
	if !ok {
		return fmt.Errorf("set %s: %w", name, ErrUnknownField)
	}
	clean := sanitize.Text(value, fd.MaxLen)
	if clean != "" && len(fd.Options) > 0 && !models.Contains(fd.Options, clean) {
		return fmt.Errorf("set %s: value %q is not an option", name, clean)
	}
	if clean == "" {
		delete(s.Values, name)
	} else {
		s.Values[name] = clean
	}
	if name == FieldFeatureNeed && clean != FeatureNeedYes {
		s.Features = []string{}
		delete(s.Values, FieldNotes)
	}
	return nil
}

// cleanFeatures sanitizes, de-duplicates and filters a feature list for flow.
func cleanFeatures(flow *Flow, raw []string) []string {
	list := sanitize.List(raw, flow.FeatureMaxLen)
	out := list[:0]
	for _, f := range list {
		if len(flow.FeatureOptions) > 0 && !models.Contains(flow.FeatureOptions, f) {
			continue
		}
		out = append(out, f)
		if flow.MaxFeatures > 0 && len(out) == flow.MaxFeatures {
			break
		}
	}
	return out
}

// storedState is the persisted shape. Values are decoded loosely so a single
// bad entry does not discard the rest.
type storedState struct {
	Step     int            `json:"step"`
	Values   map[string]any `json:"values"`
	Features []any          `json:"features"`
	Consent  any            `json:"consent"`
}

func encodeState(s *State) ([]byte, error) {
	return json.Marshal(s)
}

// decodeState parses raw and keeps only what passes sanitization for flow.
func decodeState(flow *Flow, raw []byte) (*State, error) {
	var stored storedState
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	s := newState()
	for name, v := range stored.Values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		// Invalid options and unknown fields are dropped.
		_ = s.set(flow, name, str)
	}
	features := make([]string, 0, len(stored.Features))
	for _, f := range stored.Features {
		if str, ok := f.(string); ok {
			features = append(features, str)
		}
	}
	s.Features = cleanFeatures(flow, features)
	if flow.Kind == models.FlowLite && s.Get(FieldFeatureNeed) != FeatureNeedYes {
		s.Features = []string{}
		delete(s.Values, FieldNotes)
	}

	if b, ok := stored.Consent.(bool); ok {
		s.Consent = b
	}

	s.Step = stored.Step
	if s.Step < 0 || s.Step >= len(flow.Steps) {
		s.Step = 0
	}
	return s, nil
}

func (s *State) full() *models.FullSubmission {
	return &models.FullSubmission{
		ProjectType:        s.Get("projectType"),
		Industry:           s.Get("industry"),
		HasExistingWebsite: s.Get("hasExistingWebsite"),
		ExistingWebsiteURL: s.Get("existingWebsiteUrl"),
		PrimaryGoal:        s.Get("primaryGoal"),
		TargetAudience:     s.Get("targetAudience"),
		Features:           append([]string{}, s.Features...),
		Description:        s.Get("description"),
		Budget:             s.Get("budget"),
		Timeline:           s.Get("timeline"),
		ContactName:        s.Get("contactName"),
		ContactEmail:       s.Get("contactEmail"),
		ContactPhone:       s.Get("contactPhone"),
		PreferredContact:   s.Get("preferredContact"),
		Consent:            s.Consent,
		Website:            s.Get(FieldHoneypot),
	}
}

func (s *State) lite() *models.LiteSubmission {
	sub := &models.LiteSubmission{
		ProjectType:      s.Get("projectType"),
		PrimaryGoal:      s.Get("primaryGoal"),
		BudgetRange:      s.Get("budgetRange"),
		Timeline:         s.Get("timeline"),
		PreferredContact: s.Get("preferredContact"),
		Features:         []string{},
		ContactName:      s.Get("contactName"),
		ContactEmail:     s.Get("contactEmail"),
		ContactPhone:     s.Get("contactPhone"),
		Website:          s.Get(FieldHoneypot),
	}
	if s.Get(FieldFeatureNeed) == FeatureNeedYes {
		sub.Features = append(sub.Features, s.Features...)
		sub.FeatureNotes = s.Get(FieldNotes)
	}
	return sub
}
