package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

func ids(recs []entities.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func w(english string, french ...string) entities.Record {
	return entities.Record{English: english, French: french}
}

func TestCombineAndValidate_AssignsPositionalIDs(t *testing.T) {
	merged := CombineAndValidate(entities.CategoryWord, []entities.Record{
		w("hello", "bonjour"),
		{ID: "user-w-7", English: "cat", French: entities.FrenchForms{"chat"}},
		w("bread", "pain"),
	})

	if diff := cmp.Diff([]string{"word-0", "user-w-7", "word-2"}, ids(merged)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, r := range merged {
		assert.Equal(t, entities.CategoryWord, r.Category)
	}
}

func TestCombineAndValidate_DropsInvalidKeepingOrder(t *testing.T) {
	merged := CombineAndValidate(entities.CategoryWord, []entities.Record{
		w("one", "un"),
		w("", "deux"),
		w("three"),
		w("four", "  "),
		w("five", "cinq"),
	})

	if diff := cmp.Diff([]string{"word-0", "word-4"}, ids(merged)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineAndValidate_VerbPolicy(t *testing.T) {
	conj := entities.Conjugations{"je": {"present": "mange"}}
	merged := CombineAndValidate(entities.CategoryVerb, []entities.Record{
		{Infinitive: "manger", English: "to eat", Conjugations: conj},
		{Infinitive: "boire", English: "to drink"},
		{English: "to sleep", Conjugations: conj},
		{Infinitive: "parler", Conjugations: conj},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "manger", merged[0].Infinitive)
	assert.Equal(t, "verb-0", merged[0].ID)
}

func TestCombineAndValidate_SentencesNeedBothSides(t *testing.T) {
	merged := CombineAndValidate(entities.CategorySentence, []entities.Record{
		{English: "Hello", French: entities.FrenchForms{"Bonjour"}},
		{English: "Goodbye"},
		{French: entities.FrenchForms{"Merci"}},
	})

	assert.Equal(t, []string{"sentence-0"}, ids(merged))
}

func TestCombineAndValidate_FirstOccurrenceWins(t *testing.T) {
	merged := CombineAndValidate(entities.CategoryWord, []entities.Record{
		{ID: "word-1", English: "one", French: entities.FrenchForms{"un"}},
		{ID: "word-1", English: "uno", French: entities.FrenchForms{"une"}},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "one", merged[0].English)
}

func TestCombineAndValidate_GeneratedIDsAvoidExplicitOnes(t *testing.T) {
	merged := CombineAndValidate(entities.CategoryWord, []entities.Record{
		w("zero", "zéro"),
		w("one", "un"),
		{ID: "word-1", English: "explicit", French: entities.FrenchForms{"explicite"}},
	})

	if diff := cmp.Diff([]string{"word-0", "word-1-1", "word-1"}, ids(merged)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineAndValidate_Deterministic(t *testing.T) {
	input := Concat(
		[]entities.Record{w("a", "a"), w("b", "b")},
		[]entities.Record{w("c", "c")},
		[]entities.Record{{ID: "user-w-1", English: "d", French: entities.FrenchForms{"d"}}},
	)

	first := CombineAndValidate(entities.CategoryWord, input)
	second := CombineAndValidate(entities.CategoryWord, input)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("merge is not deterministic (-first +second):\n%s", diff)
	}

	unique := map[string]bool{}
	for _, r := range first {
		assert.False(t, unique[r.ID], "duplicate id %s", r.ID)
		unique[r.ID] = true
	}
}

func TestCombineAndValidate_DoesNotMutateInput(t *testing.T) {
	input := []entities.Record{w("hello", " bonjour ", "")}

	_ = CombineAndValidate(entities.CategoryWord, input)

	assert.Equal(t, "", input[0].ID)
	assert.Equal(t, entities.FrenchForms{" bonjour ", ""}, input[0].French)
}

func TestConcat_TagsOrigins(t *testing.T) {
	out := Concat(
		[]entities.Record{w("a", "a")},
		[]entities.Record{w("b", "b")},
		[]entities.Record{w("c", "c")},
	)

	require.Len(t, out, 3)
	assert.Equal(t, entities.OriginBundled, out[0].Origin)
	assert.True(t, out[0].IsPredefined)
	assert.Equal(t, entities.OriginAdditional, out[1].Origin)
	assert.True(t, out[1].IsPredefined)
	assert.Equal(t, entities.OriginUser, out[2].Origin)
	assert.False(t, out[2].IsPredefined)
}

func TestNormalizeVerb(t *testing.T) {
	tests := []struct {
		name string
		in   entities.Record
		want string
	}{
		{"keeps infinitive gloss", entities.Record{Infinitive: "manger", English: "to eat"}, "to eat"},
		{"synthesizes from infinitive", entities.Record{Infinitive: "manger"}, "to manger"},
		{"replaces bare gloss", entities.Record{Infinitive: "manger", English: "eat"}, "to manger"},
		{"unknown without infinitive", entities.Record{}, "to unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVerb(tt.in).English)
		})
	}
}
