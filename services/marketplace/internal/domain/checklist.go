package domain

import (
	"strings"

	"github.com/soberstay/marketplace/pkg/search"
)

// ChecklistItem is one line of the approval checklist.
type ChecklistItem struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Weight   int    `json:"weight"`
	Required bool   `json:"required"`
	Passed   bool   `json:"passed"`
}

type Checklist struct {
	Score           int             `json:"score"`
	Items           []ChecklistItem `json:"items"`
	MissingRequired []string        `json:"missingRequired"`
}

// Ready reports whether every required item passed.
func (c Checklist) Ready() bool {
	return len(c.MissingRequired) == 0
}

type checklistRule struct {
	key      string
	label    string
	weight   int
	required bool
	check    func(l search.Listing) bool
}

const minDescriptionLen = 100

// Weights sum to 100.
var checklistRules = []checklistRule{
	{"location", "Name and full address", 20, true, func(l search.Listing) bool {
		return nonBlank(l.PropertyName, l.Address, l.City, l.State)
	}},
	{"price", "Monthly price", 15, true, func(l search.Listing) bool {
		return l.MonthlyPrice != nil && *l.MonthlyPrice > 0
	}},
	{"contact", "Contact email or phone", 15, true, func(l search.Listing) bool {
		return nonBlank(l.ContactEmail) || nonBlank(l.ContactPhone)
	}},
	{"description", "Description of at least 100 characters", 15, false, func(l search.Listing) bool {
		return len(strings.TrimSpace(l.Description)) >= minDescriptionLen
	}},
	{"photos", "At least three photos", 15, false, func(l search.Listing) bool {
		return len(l.Photos) >= 3
	}},
	{"house_rules", "House rules", 10, false, func(l search.Listing) bool {
		return nonBlank(l.HouseRules)
	}},
	{"housing_details", "Gender, supervision and room type", 10, false, func(l search.Listing) bool {
		return nonBlank(l.Gender, l.SupervisionType, l.RoomType)
	}},
}

// EvaluateChecklist scores l against the fixed approval checklist.
func EvaluateChecklist(l search.Listing) Checklist {
	out := Checklist{
		Items:           make([]ChecklistItem, 0, len(checklistRules)),
		MissingRequired: []string{},
	}
	for _, r := range checklistRules {
		passed := r.check(l)
		out.Items = append(out.Items, ChecklistItem{
			Key:      r.key,
			Label:    r.label,
			Weight:   r.weight,
			Required: r.required,
			Passed:   passed,
		})
		switch {
		case passed:
			out.Score += r.weight
		case r.required:
			out.MissingRequired = append(out.MissingRequired, r.key)
		}
	}
	return out
}

func nonBlank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
