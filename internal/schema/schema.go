// Package schema holds the static onboarding steps for each role.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"dealmatch/internal/domain"
)

//go:embed steps.yaml
var defaultYAML []byte

// Schema maps each role to its ordered steps.
type Schema map[domain.Role][]domain.Step

var (
	defaultOnce   sync.Once
	defaultSchema Schema
	defaultErr    error
)

// Default returns the embedded schema, parsed once.
func Default() (Schema, error) {
	defaultOnce.Do(func() {
		defaultSchema, defaultErr = Parse(defaultYAML)
	})
	return defaultSchema, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded schema as
// a programming error.
func MustDefault() Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes and validates a YAML schema document.
func Parse(data []byte) (Schema, error) {
	var raw map[domain.Role][]domain.Step
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	s := Schema(raw)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants the flow controller relies on.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema: no roles defined")
	}
	for role, steps := range s {
		if !role.Valid() {
			return fmt.Errorf("schema: unknown role %q", role)
		}
		if len(steps) == 0 {
			return fmt.Errorf("schema: role %s has no steps", role)
		}
		seen := make(map[string]string)
		for _, step := range steps {
			if len(step.Fields) == 0 {
				return fmt.Errorf("schema: %s/%s has no fields", role, step.ID)
			}
			for _, f := range step.Fields {
				if f.ID == "" {
					return fmt.Errorf("schema: %s/%s has a field without id", role, step.ID)
				}
				if prev, dup := seen[f.ID]; dup {
					return fmt.Errorf("schema: %s field %q declared in %s and %s", role, f.ID, prev, step.ID)
				}
				seen[f.ID] = step.ID
				if err := validateField(f); err != nil {
					return fmt.Errorf("schema: %s/%s: %w", role, step.ID, err)
				}
			}
		}
	}
	return nil
}

func validateField(f domain.Field) error {
	switch f.Kind {
	case domain.KindShortText, domain.KindEmail, domain.KindPassword, domain.KindLongText, domain.KindNumber:
		if len(f.Options) > 0 {
			return fmt.Errorf("field %q: options not allowed for %s", f.ID, f.Kind)
		}
	case domain.KindSingleSelect, domain.KindMultiSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("field %q: %s needs options", f.ID, f.Kind)
		}
	default:
		return fmt.Errorf("field %q: unknown kind %q", f.ID, f.Kind)
	}
	return nil
}

// Steps returns the steps for role.
func (s Schema) Steps(role domain.Role) ([]domain.Step, error) {
	steps, ok := s[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	return steps, nil
}
