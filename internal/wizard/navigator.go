package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/sanitize"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

var (
	// ErrStepInvalid is returned when the current step has issues.
	ErrStepInvalid = errors.New("step has invalid fields")
	// ErrNotLastStep is returned by Submit before the last step.
	ErrNotLastStep = errors.New("submit is only possible on the last step")
	// ErrFirstStep is returned by Retreat on step 0.
	ErrFirstStep = errors.New("already on the first step")
	// ErrLastStep is returned by Advance on the last step.
	ErrLastStep = errors.New("already on the last step")
	// ErrSubmitInFlight is returned while another Submit is running.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrRejected is returned when the hidden honeypot field is filled.
	ErrRejected = errors.New("request rejected")
)

// Submitter delivers a finished payload to the gateway.
type Submitter interface {
	SubmitFull(ctx context.Context, s *models.FullSubmission) error
	SubmitLite(ctx context.Context, s *models.LiteSubmission) error
}

// StepError wraps ErrStepInvalid with the offending issues.
type StepError struct {
	Step   int
	Issues *validation.Issues
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step+1, e.Issues)
}

func (e *StepError) Unwrap() []error {
	return []error{ErrStepInvalid, e.Issues}
}

// Navigator drives one flow. It is meant for use from a single goroutine;
// only Submit guards against concurrent calls.
type Navigator struct {
	flow      *Flow
	store     Store
	submitter Submitter
	state     *State
	inFlight  atomic.Bool
}

// NewNavigator restores any saved state for flow. A corrupt or unreadable
// saved state is logged and replaced by a fresh one.
func NewNavigator(flow *Flow, store Store, submitter Submitter) *Navigator {
	n := &Navigator{flow: flow, store: store, submitter: submitter}
	n.state = n.restore()
	return n
}

func (n *Navigator) restore() *State {
	raw, err := n.store.Load(n.flow.StorageKey)
	if err != nil {
		log.Printf("wizard: load %s: %v", n.flow.StorageKey, err)
		return newState()
	}
	if raw == nil {
		return newState()
	}
	s, err := decodeState(n.flow, raw)
	if err != nil {
		log.Printf("wizard: restore %s: %v", n.flow.StorageKey, err)
		return newState()
	}
	return s
}

func (n *Navigator) persist() error {
	data, err := encodeState(n.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := n.store.Save(n.flow.StorageKey, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Flow returns the flow definition.
func (n *Navigator) Flow() *Flow { return n.flow }

// State returns a copy of the current form state.
func (n *Navigator) State() State { return n.state.clone() }

// Step returns the zero-based current step.
func (n *Navigator) Step() int { return n.state.Step }

// Current returns the current step definition.
func (n *Navigator) Current() Step { return n.flow.Steps[n.state.Step] }

// IsLast reports whether the current step is the last one.
func (n *Navigator) IsLast() bool { return n.state.Step == len(n.flow.Steps)-1 }

// Progress returns the completion percentage and the current step label.
func (n *Navigator) Progress() (int, string) {
	total := len(n.flow.Steps)
	return (n.state.Step + 1) * 100 / total, n.Current().Label
}

// Set sanitizes and stores a text field, then persists the state.
func (n *Navigator) Set(name, value string) error {
	if err := n.state.set(n.flow, name, value); err != nil {
		return err
	}
	return n.persist()
}

// SetConsent stores the consent flag.
func (n *Navigator) SetConsent(v bool) error {
	n.state.Consent = v
	return n.persist()
}

// SetFeatures replaces the feature list.
func (n *Navigator) SetFeatures(features []string) error {
	n.state.Features = cleanFeatures(n.flow, features)
	return n.persist()
}

// AddFeature appends a sanitized feature unless it is empty or present.
func (n *Navigator) AddFeature(raw string) error {
	v := sanitize.Text(raw, n.flow.FeatureMaxLen)
	if v == "" || models.Contains(n.state.Features, v) {
		return nil
	}
	n.state.Features = cleanFeatures(n.flow, append(n.state.Features, v))
	return n.persist()
}

// RemoveFeature drops value from the feature list.
func (n *Navigator) RemoveFeature(value string) error {
	kept := n.state.Features[:0]
	for _, f := range n.state.Features {
		if f != value {
			kept = append(kept, f)
		}
	}
	n.state.Features = kept
	return n.persist()
}

// ToggleFeature adds value when absent and removes it when present.
func (n *Navigator) ToggleFeature(raw string) error {
	v := sanitize.Text(raw, n.flow.FeatureMaxLen)
	if models.Contains(n.state.Features, v) {
		return n.RemoveFeature(v)
	}
	return n.AddFeature(v)
}

// Validate returns the issues of the current step.
func (n *Navigator) Validate() *validation.Issues {
	return n.flow.ValidateStep(n.state, n.state.Step)
}

// Advance moves to the next step if the current one validates.
func (n *Navigator) Advance() error {
	if n.IsLast() {
		return ErrLastStep
	}
	if issues := n.Validate(); !issues.Empty() {
		return &StepError{Step: n.state.Step, Issues: issues}
	}
	n.state.Step++
	return n.persist()
}

// Retreat moves to the previous step.
func (n *Navigator) Retreat() error {
	if n.state.Step == 0 {
		return ErrFirstStep
	}
	n.state.Step--
	return n.persist()
}

// Submit sends the payload when on the last step and every step validates.
// The saved state is cleared after a successful send.
func (n *Navigator) Submit(ctx context.Context) error {
	if !n.IsLast() {
		return ErrNotLastStep
	}
	if !n.inFlight.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer n.inFlight.Store(false)

	for i := range n.flow.Steps {
		if issues := n.flow.ValidateStep(n.state, i); !issues.Empty() {
			return &StepError{Step: i, Issues: issues}
		}
	}
	if n.state.Get(FieldHoneypot) != "" {
		return ErrRejected
	}

	var err error
	switch p := n.flow.Payload(n.state).(type) {
	case *models.LiteSubmission:
		err = n.submitter.SubmitLite(ctx, p)
	case *models.FullSubmission:
		err = n.submitter.SubmitFull(ctx, p)
	}
	if err != nil {
		return fmt.Errorf("submit %s request: %w", n.flow.Kind, err)
	}

	if err := n.store.Delete(n.flow.StorageKey); err != nil {
		log.Printf("wizard: clear %s: %v", n.flow.StorageKey, err)
	}
	n.state = newState()
	return nil
}
