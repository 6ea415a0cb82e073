package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrAtFirstStep       = errors.New("already at first step")
	ErrFlowFinished      = errors.New("onboarding already finished")
	ErrNoCandidate       = errors.New("no candidate")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidRole       = errors.New("invalid role")
	ErrNotFound          = errors.New("not found")
)

// ValidationError names the fields of one step that blocked advancing.
type ValidationError struct {
	Step    int
	Missing []string
	// Invalid maps field id to a short reason for values that are set but
	// malformed (e.g. an unparsable email).
	Invalid map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		ids := make([]string, 0, len(e.Invalid))
		for id := range e.Invalid {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%s: %s", id, e.Invalid[id]))
		}
	}
	return fmt.Sprintf("step %d: %s", e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Fields returns every field id named by the error, missing first.
func (e *ValidationError) Fields() []string {
	out := append([]string(nil), e.Missing...)
	ids := make([]string, 0, len(e.Invalid))
	for id := range e.Invalid {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return append(out, ids...)
}
