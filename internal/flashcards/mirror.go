package flashcards

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/entities"
)

// Mirror keys of learner content in the auxiliary store. Numbers are not
// learner-editable and have no mirror.
var mirrorKeys = map[entities.Category]string{
	entities.CategoryWord:     "frenchmaster_user_words",
	entities.CategoryVerb:     "frenchmaster_user_verbs",
	entities.CategorySentence: "frenchmaster_user_sentences",
}

// MirrorKey returns the auxiliary store key holding learner records of a
// category.
func MirrorKey(category entities.Category) (string, bool) {
	key, ok := mirrorKeys[category]
	return key, ok
}

func (s *Service) mirrorRecords(category entities.Category) []entities.Record {
	key, ok := mirrorKeys[category]
	if !ok || s.kv == nil {
		return nil
	}
	raw, ok := s.kv.Get(key)
	if !ok || raw == "" {
		return nil
	}

	var recs []entities.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		log.Printf("[flashcards] WARNING: ignoring malformed mirror %s: %v", key, err)
		return nil
	}
	return recs
}

func (s *Service) writeMirror(category entities.Category, recs []entities.Record) error {
	key, ok := mirrorKeys[category]
	if !ok {
		return fmt.Errorf("%s have no mirror", category.Table())
	}
	if s.kv == nil {
		return fmt.Errorf("no auxiliary store configured")
	}
	if recs == nil {
		recs = []entities.Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode mirror %s: %w", key, err)
	}
	return s.kv.Set(key, string(data))
}

// mirrorUpsert replaces the record with the same id or appends it.
// When onlyExisting is set a record missing from the mirror is left out.
func (s *Service) mirrorUpsert(category entities.Category, rec entities.Record, onlyExisting bool) (bool, error) {
	recs := s.mirrorRecords(category)
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return true, s.writeMirror(category, recs)
		}
	}
	if onlyExisting {
		return false, nil
	}
	return true, s.writeMirror(category, append(recs, rec))
}

func (s *Service) mirrorRemove(category entities.Category, id string) (bool, error) {
	recs := s.mirrorRecords(category)
	for i := range recs {
		if recs[i].ID == id {
			return true, s.writeMirror(category, append(recs[:i], recs[i+1:]...))
		}
	}
	return false, nil
}

// restoreMirrored writes learner records found only in the mirror into
// the store and returns them. Records whose write fails are still returned
// so they stay visible until the store accepts them.
func (s *Service) restoreMirrored(category entities.Category, stored []entities.Record) []entities.Record {
	pending := content.UserOrigin(s.mirrorRecords(category))
	if len(pending) == 0 {
		return nil
	}

	have := make(map[string]struct{}, len(stored))
	for _, r := range stored {
		have[r.ID] = struct{}{}
	}

	var restored []entities.Record
	written := 0
	for _, r := range pending {
		if r.ID == "" {
			continue
		}
		if _, ok := have[r.ID]; ok {
			continue
		}
		have[r.ID] = struct{}{}

		r.Category = category
		err := s.store.Add(category, &r)
		switch {
		case err == nil:
			written++
		case errors.Is(err, records.ErrDuplicateKey):
		default:
			log.Printf("[flashcards] WARNING: %s %s is still only mirrored: %v", category, r.ID, err)
		}
		restored = append(restored, r)
	}
	if written > 0 {
		log.Printf("[flashcards] wrote %d mirrored %s records back to the store", written, category.Table())
	}
	return restored
}
