package content

import (
	"strings"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// Policy describes what a record of one category must carry to be kept.
type Policy struct {
	Required []string
	Valid    func(entities.Record) bool
}

var policies = map[entities.Category]Policy{
	entities.CategoryWord: {
		Required: []string{"english", "french"},
		Valid:    hasEnglishAndFrench,
	},
	entities.CategoryNumber: {
		Required: []string{"english", "french"},
		Valid:    hasEnglishAndFrench,
	},
	entities.CategorySentence: {
		Required: []string{"english", "french"},
		Valid:    hasEnglishAndFrench,
	},
	entities.CategoryVerb: {
		Required: []string{"infinitive", "english", "conjugations"},
		Valid: func(r entities.Record) bool {
			return notBlank(r.Infinitive) && notBlank(r.English) && len(r.Conjugations) > 0
		},
	},
}

// PolicyFor returns the validation policy of a category.
func PolicyFor(category entities.Category) (Policy, bool) {
	p, ok := policies[category]
	return p, ok
}

// Valid reports whether the record satisfies its category policy.
// Unknown categories never validate.
func Valid(category entities.Category, r entities.Record) bool {
	p, ok := policies[category]
	if !ok {
		return false
	}
	return p.Valid(r)
}

// Missing lists the required fields the record lacks, for diagnostics.
func Missing(category entities.Category, r entities.Record) []string {
	var out []string
	for _, field := range policies[category].Required {
		switch field {
		case "english":
			if !notBlank(r.English) {
				out = append(out, field)
			}
		case "french":
			if len(r.French.Clean()) == 0 {
				out = append(out, field)
			}
		case "infinitive":
			if !notBlank(r.Infinitive) {
				out = append(out, field)
			}
		case "conjugations":
			if len(r.Conjugations) == 0 {
				out = append(out, field)
			}
		}
	}
	return out
}

func hasEnglishAndFrench(r entities.Record) bool {
	return notBlank(r.English) && len(r.French.Clean()) > 0
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
