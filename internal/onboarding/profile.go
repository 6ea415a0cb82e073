package onboarding

import (
	"slices"
	"strings"

	"dealmatch/internal/domain"
)

func (f *Flow) finalize() domain.Profile {
	p := domain.Profile{
		ID:         f.ids.NewID(),
		Role:       f.role,
		Verified:   false,
		LastActive: domain.LastActiveNow,
		CreatedAt:  f.ids.Now(),
	}
	for id, answer := range f.answers {
		field := f.fields[id]
		if field.Kind == domain.KindPassword || answer.Empty() {
			continue
		}
		switch id {
		case "name":
			p.Name = answer.Text
		case "email":
			p.Email = answer.Text
		case "company":
			p.Company = answer.Text
		case "location":
			p.Location = answer.Text
		case "industry":
			p.Industry = answer.Text
		case "budget":
			p.Budget = answer.Text
		case "revenue":
			p.Revenue = answer.Text
		case "employees":
			p.Employees = answer.Text
		case "description":
			p.Description = answer.Text
		case "interests":
			p.Interests = slices.Clone(answer.Values)
		default:
			if p.Attributes == nil {
				p.Attributes = make(map[string]string)
			}
			if answer.IsSet() {
				p.Attributes[id] = strings.Join(answer.Values, ", ")
			} else {
				p.Attributes[id] = answer.Text
			}
		}
	}
	return p
}

