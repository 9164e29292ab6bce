package content

import "github.com/mrlokans/frenchmaster/internal/entities"

// FallbackBundle is the minimal content used when the normal load path
// fails. It keeps the application usable, nothing more.
func FallbackBundle() *Bundle {
	b := NewBundle()
	b.Bundled[entities.CategoryWord] = []entities.Record{
		{ID: "word-fallback-1", English: "hello", French: entities.FrenchForms{"bonjour"}},
		{ID: "word-fallback-2", English: "thank you", French: entities.FrenchForms{"merci"}},
		{ID: "word-fallback-3", English: "cat", French: entities.FrenchForms{"chat"}},
	}
	b.Bundled[entities.CategoryVerb] = []entities.Record{
		{
			ID:         "verb-fallback-1",
			Infinitive: "être",
			English:    "to be",
			Conjugations: entities.Conjugations{
				"je":   {"present": "suis"},
				"tu":   {"present": "es"},
				"il":   {"present": "est"},
				"nous": {"present": "sommes"},
			},
		},
	}
	b.Bundled[entities.CategorySentence] = []entities.Record{
		{ID: "sentence-fallback-1", English: "How are you?", French: entities.FrenchForms{"Comment allez-vous ?"}},
	}
	b.Bundled[entities.CategoryNumber] = []entities.Record{
		{ID: "number-fallback-1", English: "one", French: entities.FrenchForms{"un"}, Category: entities.CategoryNumber},
		{ID: "number-fallback-2", English: "two", French: entities.FrenchForms{"deux"}, Category: entities.CategoryNumber},
		{ID: "number-fallback-3", English: "three", French: entities.FrenchForms{"trois"}, Category: entities.CategoryNumber},
	}
	return b
}
