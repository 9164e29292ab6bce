package flashcards

import (
	"context"
	"log"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/entities"
)

// GetAll returns the records of a category, initializing on first use.
//
// When a store is attached the store is authoritative: a table that was
// never seeded is filled from the cache, and otherwise the cache is
// replaced by the validated store contents. Any store failure answers from
// the cache instead. Retired predefined records are never returned and
// verbs always carry an english gloss starting with "to ".
func (s *Service) GetAll(ctx context.Context, category entities.Category) []entities.Record {
	if !category.Valid() {
		log.Printf("[flashcards] WARNING: unknown category %q", category)
		return []entities.Record{}
	}
	s.ensureInitialized(ctx)

	return s.present(category, s.readThrough(category))
}

func (s *Service) GetAllWords(ctx context.Context) []entities.Record {
	return s.GetAll(ctx, entities.CategoryWord)
}

func (s *Service) GetAllVerbs(ctx context.Context) []entities.Record {
	return s.GetAll(ctx, entities.CategoryVerb)
}

func (s *Service) GetAllSentences(ctx context.Context) []entities.Record {
	return s.GetAll(ctx, entities.CategorySentence)
}

func (s *Service) GetAllNumbers(ctx context.Context) []entities.Record {
	return s.GetAll(ctx, entities.CategoryNumber)
}

// CachedRecords returns a copy of the cache without touching the store or
// triggering initialization. Retired records are filtered as in GetAll.
func (s *Service) CachedRecords(category entities.Category) []entities.Record {
	recs, _ := s.snapshot(category)
	return s.present(category, recs)
}

// present drops retired predefined records and fills in verb glosses.
// recs is modified in place.
func (s *Service) present(category entities.Category, recs []entities.Record) []entities.Record {
	if s.retired[category] {
		kept := recs[:0]
		for _, r := range recs {
			if !content.IsPurgeable(r) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	if category == entities.CategoryVerb {
		for i := range recs {
			recs[i] = content.NormalizeVerb(recs[i])
		}
	}
	return recs
}

func (s *Service) snapshot(category entities.Category) ([]entities.Record, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.CloneRecords(s.cache[category]), s.version
}

func (s *Service) readThrough(category entities.Category) []entities.Record {
	cached, version := s.snapshot(category)
	if s.store == nil || s.Mode() == ModeFallback {
		return cached
	}

	count, err := s.store.Count(category)
	if err != nil {
		log.Printf("[flashcards] WARNING: counting %s failed, serving cache: %v", category.Table(), err)
		return cached
	}
	if count == 0 {
		seeded, err := s.store.Seeded(category)
		if err != nil {
			log.Printf("[flashcards] WARNING: reading seed state of %s failed, serving cache: %v", category.Table(), err)
			return cached
		}
		if !seeded {
			if n, ok := s.selfHeal(category, cached, true); ok {
				if err := s.store.MarkSeeded(category, n); err != nil {
					log.Printf("[flashcards] WARNING: %v", err)
				}
			}
			return cached
		}
		// Shipped rows were removed on purpose; only learner rows come back.
		s.selfHeal(category, cached, false)
	}

	stored, err := s.store.GetAll(category)
	if err != nil {
		log.Printf("[flashcards] WARNING: reading %s failed, serving cache: %v", category.Table(), err)
		return cached
	}
	stored = append(stored, s.restoreMirrored(category, stored)...)
	for i := range stored {
		stored[i] = content.ClassifyLegacy(stored[i])
	}
	validated := content.CombineAndValidate(category, stored)

	s.mu.Lock()
	if s.version == version {
		s.cache[category] = entities.CloneRecords(validated)
	}
	s.mu.Unlock()

	return validated
}

// selfHeal writes the cached records into an empty table. Shipped records
// are included only when shipped is set and the category is not retired.
// It reports how many rows were inserted and whether every write succeeded.
func (s *Service) selfHeal(category entities.Category, cached []entities.Record, shipped bool) (int, bool) {
	seed := cached
	if !shipped || s.retired[category] {
		seed = make([]entities.Record, 0, len(cached))
		for _, r := range cached {
			if !content.IsPurgeable(r) {
				seed = append(seed, r)
			}
		}
	}
	if len(seed) == 0 {
		return 0, true
	}

	inserted, err := s.store.BulkAdd(category, seed)
	if err != nil {
		log.Printf("[flashcards] WARNING: seeding %s inserted %d/%d: %v", category.Table(), inserted, len(seed), err)
		return inserted, false
	}
	log.Printf("[flashcards] seeded empty %s table with %d records", category.Table(), inserted)
	return inserted, true
}
