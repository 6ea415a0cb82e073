// Package onboarding drives the per-role intake wizard: it walks the schema
// one step at a time, validates the visible step, and produces a Profile
// once the last step is accepted.
package onboarding

import (
	"fmt"
	"net/mail"
	"slices"
	"strconv"

	"dealmatch/internal/domain"
	"dealmatch/internal/identity"
	"dealmatch/internal/schema"
)

// Flow is a single onboarding run. It is not safe for concurrent use.
type Flow struct {
	schema schema.Schema
	ids    identity.Source

	role     domain.Role
	steps    []domain.Step
	fields   map[string]domain.Field
	step     int
	answers  map[string]domain.Answer
	finished bool
}

// State is a read-only snapshot of a Flow.
type State struct {
	Role      domain.Role
	Step      int
	StepCount int
	Current   domain.Step
	Answers   map[string]domain.Answer
	Finished  bool
}

// Result is returned by Advance. Profile is set only when the final step was
// accepted.
type Result struct {
	Step    int
	Profile *domain.Profile
}

// New returns an idle flow; call Start before anything else.
func New(s schema.Schema, ids identity.Source) *Flow {
	if ids == nil {
		ids = identity.System{}
	}
	return &Flow{schema: s, ids: ids}
}

// Start resets the flow to step 0 of role's schema with no answers.
func (f *Flow) Start(role domain.Role) error {
	steps, err := f.schema.Steps(role)
	if err != nil {
		return err
	}
	fields := make(map[string]domain.Field)
	for _, step := range steps {
		for _, field := range step.Fields {
			fields[field.ID] = field
		}
	}
	f.role = role
	f.steps = steps
	f.fields = fields
	f.step = 0
	f.answers = make(map[string]domain.Answer)
	f.finished = false
	return nil
}

// SetAnswer stores value for fieldID, overwriting any earlier value. The
// field may belong to any step of the active schema.
func (f *Flow) SetAnswer(fieldID string, value domain.Answer) error {
	if f.steps == nil {
		return fmt.Errorf("onboarding: flow not started")
	}
	if f.finished {
		return domain.ErrFlowFinished
	}
	field, ok := f.fields[fieldID]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, fieldID)
	}
	if err := checkShape(field, value); err != nil {
		return err
	}
	f.answers[fieldID] = value
	return nil
}

func checkShape(field domain.Field, value domain.Answer) error {
	if field.Kind == domain.KindMultiSelect {
		if !value.IsSet() {
			return fmt.Errorf("%w: %s expects a selection", domain.ErrInvalidAnswer, field.ID)
		}
		for _, v := range value.Values {
			if !field.HasOption(v) {
				return fmt.Errorf("%w: %s has no option %q", domain.ErrInvalidAnswer, field.ID, v)
			}
		}
		return nil
	}
	if value.IsSet() {
		return fmt.Errorf("%w: %s expects a single value", domain.ErrInvalidAnswer, field.ID)
	}
	if field.Kind == domain.KindSingleSelect && value.Text != "" && !field.HasOption(value.Text) {
		return fmt.Errorf("%w: %s has no option %q", domain.ErrInvalidAnswer, field.ID, value.Text)
	}
	return nil
}

// Advance validates the current step. On success it moves to the next step,
// or, on the last step, finalizes the flow and returns the new Profile.
// Earlier steps are not re-validated.
func (f *Flow) Advance() (Result, error) {
	if f.steps == nil {
		return Result{}, fmt.Errorf("onboarding: flow not started")
	}
	if f.finished {
		return Result{}, domain.ErrFlowFinished
	}
	if err := f.validateStep(f.step); err != nil {
		return Result{Step: f.step}, err
	}
	if f.step < len(f.steps)-1 {
		f.step++
		return Result{Step: f.step}, nil
	}
	profile := f.finalize()
	f.finished = true
	return Result{Step: f.step, Profile: &profile}, nil
}

// Back moves to the previous step, keeping every answer.
func (f *Flow) Back() error {
	if f.steps == nil {
		return fmt.Errorf("onboarding: flow not started")
	}
	if f.finished {
		return domain.ErrFlowFinished
	}
	if f.step == 0 {
		return domain.ErrAtFirstStep
	}
	f.step--
	return nil
}

// State returns a snapshot; the answer map is a copy.
func (f *Flow) State() State {
	st := State{
		Role:      f.role,
		Step:      f.step,
		StepCount: len(f.steps),
		Answers:   make(map[string]domain.Answer, len(f.answers)),
		Finished:  f.finished,
	}
	if f.step < len(f.steps) {
		st.Current = f.steps[f.step]
	}
	for id, a := range f.answers {
		a.Values = slices.Clone(a.Values)
		st.Answers[id] = a
	}
	return st
}

func (f *Flow) validateStep(idx int) error {
	verr := &domain.ValidationError{Step: idx}
	for _, field := range f.steps[idx].Fields {
		answer, ok := f.answers[field.ID]
		if !ok || answer.Empty() {
			if field.Required {
				verr.Missing = append(verr.Missing, field.ID)
			}
			continue
		}
		if reason := formatProblem(field, answer); reason != "" {
			if verr.Invalid == nil {
				verr.Invalid = make(map[string]string)
			}
			verr.Invalid[field.ID] = reason
		}
	}
	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}

func formatProblem(field domain.Field, answer domain.Answer) string {
	switch field.Kind {
	case domain.KindEmail:
		addr, err := mail.ParseAddress(answer.Text)
		if err != nil || addr.Address != answer.Text {
			return "not a valid email address"
		}
	case domain.KindNumber:
		if _, err := strconv.Atoi(answer.Text); err != nil {
			return "not a whole number"
		}
	}
	return ""
}
