// Package selection picks the next practice item for a learner.
//
// Each learner has one exposure log per category: a JSON object mapping
// record id to the unix millisecond timestamp it was last shown, kept in
// the auxiliary key/value store. Records never shown are preferred; once
// everything has been seen the least recently seen record comes back.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/kvstore"
)

// RecordSource supplies the validated records of a category. Both methods
// leave out records the source has retired.
type RecordSource interface {
	GetAll(ctx context.Context, category entities.Category) []entities.Record
	CachedRecords(category entities.Category) []entities.Record
}

// SeenStore persists exposure logs.
type SeenStore interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
	Remove(key string) error
}

// SeenMap maps a record id to the unix milliseconds it was last shown.
type SeenMap map[string]int64

type Option func(*Selector)

// WithClock overrides the time source used for exposure timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithRand overrides the random index source; intn(n) must return a value
// in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Selector) { s.intn = intn }
}

type Selector struct {
	records RecordSource
	seen    SeenStore
	now     func() time.Time
	intn    func(n int) int

	// serializes read-modify-write of exposure logs
	mu sync.Mutex
}

func NewSelector(records RecordSource, seen SeenStore, opts ...Option) *Selector {
	s := &Selector{
		records: records,
		seen:    seen,
		now:     time.Now,
		intn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeenKey is the store key of a learner's exposure log for a category.
func SeenKey(category entities.Category, userID string) string {
	return fmt.Sprintf("french-learning-%s-seen-%s", category.Table(), userID)
}

// GetNextItem returns the next record to practice, or false when the
// category is empty. An unreadable exposure log degrades to a random pick
// from the cached records.
func (s *Selector) GetNextItem(ctx context.Context, category entities.Category, userID string) (rec *entities.Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[selection] ERROR: picking %s for %s panicked: %v", category, userID, r)
			rec, ok = s.randomCached(category)
		}
	}()

	recs := s.records.GetAll(ctx, category)
	if len(recs) == 0 {
		return nil, false
	}

	seen, err := s.load(category, userID)
	if err != nil {
		log.Printf("[selection] WARNING: exposure log unavailable for %s/%s, picking at random: %v", category, userID, err)
		return s.randomCached(category)
	}

	var unseen []int
	for i, r := range recs {
		if _, ok := seen[r.ID]; !ok {
			unseen = append(unseen, i)
		}
	}
	if len(unseen) > 0 {
		picked := recs[unseen[s.intn(len(unseen))]]
		return &picked, true
	}

	oldest := 0
	for i := 1; i < len(recs); i++ {
		if seen[recs[i].ID] < seen[recs[oldest].ID] {
			oldest = i
		}
	}
	picked := recs[oldest]
	return &picked, true
}

// MarkItemAsSeen stamps itemID with the current time in the learner's log.
// An empty id is ignored.
func (s *Selector) MarkItemAsSeen(category entities.Category, itemID, userID string) error {
	if itemID == "" {
		log.Printf("[selection] WARNING: mark as seen without an item id (%s, %s)", category, userID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen, err := s.load(category, userID)
	if err != nil {
		return err
	}
	seen[itemID] = s.now().UnixMilli()

	if err := s.seen.SetJSON(SeenKey(category, userID), seen); err != nil {
		return fmt.Errorf("save exposure log: %w", err)
	}
	return nil
}

// ResetProgress forgets every exposure of the learner in a category.
func (s *Selector) ResetProgress(category entities.Category, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.seen.Remove(SeenKey(category, userID)); err != nil {
		return fmt.Errorf("reset exposure log: %w", err)
	}
	return nil
}

type Progress struct {
	Category   entities.Category `json:"category"`
	Seen       int               `json:"seen"`
	Total      int               `json:"total"`
	LastSeenAt *time.Time        `json:"last_seen_at,omitempty"`
}

// Progress reports how many current records the learner has seen.
// Log entries for records that no longer exist are not counted.
func (s *Selector) Progress(ctx context.Context, category entities.Category, userID string) (Progress, error) {
	recs := s.records.GetAll(ctx, category)
	p := Progress{Category: category, Total: len(recs)}

	seen, err := s.load(category, userID)
	if err != nil {
		return p, err
	}

	var latest int64
	for _, r := range recs {
		ts, ok := seen[r.ID]
		if !ok {
			continue
		}
		p.Seen++
		if ts > latest {
			latest = ts
		}
	}
	if latest > 0 {
		t := time.UnixMilli(latest).UTC()
		p.LastSeenAt = &t
	}
	return p, nil
}

// load returns the exposure log, treating a missing or corrupt one as
// empty. Other store errors are returned.
func (s *Selector) load(category entities.Category, userID string) (SeenMap, error) {
	seen := SeenMap{}
	err := s.seen.GetJSON(SeenKey(category, userID), &seen)
	switch {
	case err == nil:
		if seen == nil {
			seen = SeenMap{}
		}
		return seen, nil
	case errors.Is(err, kvstore.ErrNotFound):
		return SeenMap{}, nil
	case errors.Is(err, kvstore.ErrMalformed):
		log.Printf("[selection] WARNING: discarding corrupt exposure log: %v", err)
		return SeenMap{}, nil
	default:
		return nil, err
	}
}

func (s *Selector) randomCached(category entities.Category) (*entities.Record, bool) {
	recs := s.records.CachedRecords(category)
	if len(recs) == 0 {
		return nil, false
	}
	picked := recs[s.intn(len(recs))]
	return &picked, true
}
