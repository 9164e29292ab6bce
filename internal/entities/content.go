package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryWord     Category = "word"
	CategoryVerb     Category = "verb"
	CategorySentence Category = "sentence"
	CategoryNumber   Category = "number"
)

// AllCategories lists every content category in load order.
var AllCategories = []Category{CategoryWord, CategoryVerb, CategorySentence, CategoryNumber}

// ParseCategory accepts both the singular name and the table name ("words").
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if s == string(c) || s == c.Table() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Table returns the name of the store table holding this category.
func (c Category) Table() string {
	return string(c) + "s"
}

// Abbrev is the short form used in user-created ids ("user-w-1700000000000").
func (c Category) Abbrev() string {
	if c == "" {
		return ""
	}
	return string(c)[:1]
}

// IDPrefix is the prefix of ids generated for bundled content ("word-12").
func (c Category) IDPrefix() string {
	return string(c) + "-"
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Origin string

const (
	OriginBundled    Origin = "bundled"
	OriginAdditional Origin = "additional"
	OriginUser       Origin = "user"
)

// Predefined reports whether the origin denotes content shipped with the app.
func (o Origin) Predefined() bool {
	return o == OriginBundled || o == OriginAdditional
}

// FrenchForms is the ordered list of French renderings of an entry.
// A bare JSON string decodes to a one-element list.
type FrenchForms []string

func (f *FrenchForms) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*f = FrenchForms{}
			return nil
		}
		*f = FrenchForms{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("french must be a string or a list of strings: %w", err)
	}
	*f = FrenchForms(many)
	return nil
}

// Clean drops blank entries and trims the rest.
func (f FrenchForms) Clean() FrenchForms {
	out := make(FrenchForms, 0, len(f))
	for _, s := range f {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Conjugations maps a subject pronoun to its tense -> form table.
type Conjugations map[string]map[string]string

func (c Conjugations) clone() Conjugations {
	if c == nil {
		return nil
	}
	out := make(Conjugations, len(c))
	for pronoun, tenses := range c {
		inner := make(map[string]string, len(tenses))
		for tense, form := range tenses {
			inner[tense] = form
		}
		out[pronoun] = inner
	}
	return out
}

// Record is a single flashcard entry. Words, verbs, sentences and numbers
// share this shape; each category lives in its own table.
//
// The table has no secondary indexes: the struct is migrated once per
// category table and SQLite index names are database-wide.
type Record struct {
	ID           string       `gorm:"primaryKey;size:128" json:"id,omitempty"`
	Category     Category     `gorm:"size:16" json:"category,omitempty"`
	Origin       Origin       `gorm:"size:16" json:"origin,omitempty"`
	IsPredefined bool         `json:"isPredefined"`
	English      string       `gorm:"type:text" json:"english"`
	French       FrenchForms  `gorm:"serializer:json;type:text" json:"french,omitempty"`
	Infinitive   string       `gorm:"size:128" json:"infinitive,omitempty"`
	Conjugations Conjugations `gorm:"serializer:json;type:text" json:"conjugations,omitempty"`
	CreatedAt    *time.Time   `gorm:"autoCreateTime:false" json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

// Clone returns a deep copy so callers cannot reach into cached state.
func (r Record) Clone() Record {
	out := r
	if r.French != nil {
		out.French = append(FrenchForms(nil), r.French...)
	}
	out.Conjugations = r.Conjugations.clone()
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		out.CreatedAt = &t
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// CloneRecords deep-copies a slice of records. A nil input yields an empty slice.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
