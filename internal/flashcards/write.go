package flashcards

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/entities"
)

// AddUserRecord stores a learner-created record and returns it with its
// assigned id. Words, verbs and sentences accept learner content.
//
// The store is written first and the cache only after it confirms. When
// the store is missing or failing the record goes to the auxiliary mirror
// instead. A duplicate id is rejected.
func (s *Service) AddUserRecord(ctx context.Context, category entities.Category, rec entities.Record) (entities.Record, bool) {
	if _, ok := mirrorKeys[category]; !ok {
		log.Printf("[flashcards] WARNING: %q does not accept learner content", category)
		return rec, false
	}
	s.ensureInitialized(ctx)

	rec, ok := s.prepareUserRecord(category, rec)
	if !ok {
		return rec, false
	}
	if rec.ID != "" {
		if content.HasPredefinedID(rec.ID) {
			log.Printf("[flashcards] WARNING: id %s is reserved for shipped content", rec.ID)
			return rec, false
		}
		if _, exists := s.cached(category, rec.ID); exists {
			log.Printf("[flashcards] WARNING: %s %s already exists", category, rec.ID)
			return rec, false
		}
	} else {
		rec.ID = s.newUserID(category)
	}

	now := s.now().UTC()
	rec.CreatedAt = timePtr(now)
	rec.UpdatedAt = timePtr(now)

	persisted := false
	if s.store != nil {
		err := s.store.Add(category, &rec)
		switch {
		case err == nil:
			persisted = true
		case errors.Is(err, records.ErrDuplicateKey):
			log.Printf("[flashcards] WARNING: %s %s already stored", category, rec.ID)
			return rec, false
		default:
			log.Printf("[flashcards] WARNING: storing %s %s failed, mirroring: %v", category, rec.ID, err)
		}
	}
	if !persisted {
		if _, err := s.mirrorUpsert(category, rec, false); err != nil {
			log.Printf("[flashcards] ERROR: could not persist %s %s: %v", category, rec.ID, err)
			return rec, false
		}
	}

	s.cacheUpsert(category, rec)
	return rec.Clone(), true
}

func (s *Service) AddUserWord(ctx context.Context, rec entities.Record) (entities.Record, bool) {
	return s.AddUserRecord(ctx, entities.CategoryWord, rec)
}

func (s *Service) AddUserVerb(ctx context.Context, rec entities.Record) (entities.Record, bool) {
	return s.AddUserRecord(ctx, entities.CategoryVerb, rec)
}

func (s *Service) AddUserSentence(ctx context.Context, rec entities.Record) (entities.Record, bool) {
	return s.AddUserRecord(ctx, entities.CategorySentence, rec)
}

// UpdateData upserts a record by id. Existing records keep their origin
// and creation time. A record that looks shipped but no longer exists is
// not recreated.
func (s *Service) UpdateData(ctx context.Context, category entities.Category, rec entities.Record) (entities.Record, bool) {
	if !category.Valid() {
		log.Printf("[flashcards] WARNING: unknown category %q", category)
		return rec, false
	}
	if strings.TrimSpace(rec.ID) == "" {
		log.Printf("[flashcards] WARNING: update of %s without id", category)
		return rec, false
	}
	s.ensureInitialized(ctx)

	rec, ok := s.prepareUserRecord(category, rec)
	if !ok {
		return rec, false
	}

	existing, found, err := s.lookup(category, rec.ID)
	if err != nil {
		log.Printf("[flashcards] WARNING: looking up %s %s failed: %v", category, rec.ID, err)
		return rec, false
	}

	now := s.now().UTC()
	if found {
		existing = content.ClassifyLegacy(existing)
		if s.store == nil && content.IsPredefined(existing) {
			// The mirror only carries learner records, so the edit would
			// be dropped on the next load.
			log.Printf("[flashcards] WARNING: shipped %s %s cannot be edited without a store", category, rec.ID)
			return rec, false
		}
		rec.Origin = existing.Origin
		rec.IsPredefined = existing.IsPredefined
		rec.CreatedAt = existing.CreatedAt
	} else {
		if content.HasPredefinedID(rec.ID) || content.IsPurgeable(rec) {
			log.Printf("[flashcards] WARNING: refusing to recreate shipped %s %s", category, rec.ID)
			return rec, false
		}
		rec.Origin = entities.OriginUser
		rec.IsPredefined = false
		rec.CreatedAt = timePtr(now)
	}
	rec.UpdatedAt = timePtr(now)

	if s.store != nil {
		if err := s.store.Update(category, &rec); err != nil {
			log.Printf("[flashcards] ERROR: updating %s %s failed: %v", category, rec.ID, err)
			return rec, false
		}
		if _, err := s.mirrorUpsert(category, rec, true); err != nil {
			log.Printf("[flashcards] WARNING: mirror of %s %s is stale: %v", category, rec.ID, err)
		}
	} else if _, err := s.mirrorUpsert(category, rec, false); err != nil {
		log.Printf("[flashcards] ERROR: could not persist %s %s: %v", category, rec.ID, err)
		return rec, false
	}

	s.cacheUpsert(category, rec)
	return rec.Clone(), true
}

// DeleteData removes a record by id from the store, the mirror and the
// cache. It returns false when the id is unknown or the store fails.
func (s *Service) DeleteData(ctx context.Context, category entities.Category, id string) bool {
	if !category.Valid() || id == "" {
		return false
	}
	s.ensureInitialized(ctx)

	removed := false
	if s.store != nil {
		ok, err := s.store.Delete(category, id)
		if err != nil {
			log.Printf("[flashcards] ERROR: deleting %s %s failed: %v", category, id, err)
			return false
		}
		removed = ok
	}

	mirrored, err := s.mirrorRemove(category, id)
	if err != nil {
		log.Printf("[flashcards] WARNING: removing %s %s from mirror failed: %v", category, id, err)
		if s.store == nil {
			return false
		}
	}
	if !removed && !mirrored {
		log.Printf("[flashcards] %s %s not found", category, id)
		return false
	}

	s.cacheRemove(category, id)
	return true
}

// SaveUserContent replaces every learner record of a category with recs:
// the table is cleared and refilled with its shipped rows plus recs, recs
// are mirrored to the auxiliary store, and the content is reloaded.
func (s *Service) SaveUserContent(ctx context.Context, category entities.Category, recs []entities.Record) bool {
	if _, ok := mirrorKeys[category]; !ok {
		log.Printf("[flashcards] WARNING: %q does not accept learner content", category)
		return false
	}
	s.ensureInitialized(ctx)

	now := s.now().UTC()
	prepared := make([]entities.Record, 0, len(recs))
	for _, r := range recs {
		r, ok := s.prepareUserRecord(category, r)
		if !ok {
			continue
		}
		if r.ID == "" || content.HasPredefinedID(r.ID) {
			r.ID = s.newUserID(category)
		}
		if r.CreatedAt == nil {
			r.CreatedAt = timePtr(now)
		}
		r.UpdatedAt = timePtr(now)
		prepared = append(prepared, r)
	}

	stored := false
	if s.store != nil {
		if err := s.replaceTable(category, prepared); err != nil {
			log.Printf("[flashcards] ERROR: saving %s: %v", category.Table(), err)
		} else {
			stored = true
		}
	}

	mirrored := true
	if err := s.writeMirror(category, prepared); err != nil {
		log.Printf("[flashcards] WARNING: mirroring %s failed: %v", category.Table(), err)
		mirrored = false
	}

	s.Refresh(ctx)

	if s.store != nil {
		return stored
	}
	return mirrored
}

// replaceTable clears the category table and bulk inserts the shipped rows
// it held followed by prepared. The two steps are not atomic.
func (s *Service) replaceTable(category entities.Category, prepared []entities.Record) error {
	rows, err := s.store.GetAll(category)
	if err != nil {
		return fmt.Errorf("read %s: %w", category.Table(), err)
	}
	keep := make([]entities.Record, 0, len(rows)+len(prepared))
	for _, r := range rows {
		if content.IsPredefined(content.ClassifyLegacy(r)) {
			keep = append(keep, r)
		}
	}

	if err := s.store.Clear(category); err != nil {
		return err
	}
	keep = append(keep, prepared...)
	inserted, err := s.store.BulkAdd(category, keep)
	if err != nil {
		return fmt.Errorf("inserted %d/%d: %w", inserted, len(keep), err)
	}
	return nil
}

// prepareUserRecord copies rec, tags it as learner content of the category
// and validates it.
func (s *Service) prepareUserRecord(category entities.Category, rec entities.Record) (entities.Record, bool) {
	rec = rec.Clone()
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Category = category
	rec.Origin = entities.OriginUser
	rec.IsPredefined = false
	if rec.French != nil {
		rec.French = rec.French.Clean()
	}
	if !content.Valid(category, rec) {
		log.Printf("[flashcards] WARNING: rejected %s missing %v", category, content.Missing(category, rec))
		return rec, false
	}
	return rec, true
}

// newUserID returns "user-<abbrev>-<unix millis>", bumping the clock
// reading when two ids would collide.
func (s *Service) newUserID(category entities.Category) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastIDMillis {
		ms = s.lastIDMillis + 1
	}
	s.lastIDMillis = ms
	return fmt.Sprintf("user-%s-%d", category.Abbrev(), ms)
}

func (s *Service) lookup(category entities.Category, id string) (entities.Record, bool, error) {
	if s.store == nil {
		rec, ok := s.cached(category, id)
		return rec, ok, nil
	}
	rec, err := s.store.GetByID(category, id)
	if errors.Is(err, records.ErrNotFound) {
		return entities.Record{}, false, nil
	}
	if err != nil {
		return entities.Record{}, false, err
	}
	return *rec, true, nil
}

func (s *Service) cached(category entities.Category, id string) (entities.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.cache[category] {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return entities.Record{}, false
}

func (s *Service) cacheUpsert(category entities.Category, rec entities.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	recs := s.cache[category]
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec.Clone()
			return
		}
	}
	s.cache[category] = append(recs, rec.Clone())
}

func (s *Service) cacheRemove(category entities.Category, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	recs := s.cache[category]
	for i := range recs {
		if recs[i].ID == id {
			s.cache[category] = append(recs[:i:i], recs[i+1:]...)
			return
		}
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
