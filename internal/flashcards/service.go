// Package flashcards owns the in-memory content cache and keeps it in step
// with the durable store.
//
// The Service is the error boundary of the content layer: store, bundle and
// merge failures are logged and turned into booleans, empty lists or a
// degraded Mode. Nothing below it reaches callers as an error.
package flashcards

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/entities"
)

type Mode string

const (
	ModeUninitialized Mode = "uninitialized"
	ModeReady         Mode = "ready"
	ModeCacheOnly     Mode = "cache_only" // no durable store
	ModeFallback      Mode = "fallback"   // embedded fallback dataset
)

// DefaultUserID is used when a getter triggers initialization implicitly.
const DefaultUserID = "default"

type Options struct {
	// Store may be nil, in which case the service runs cache-only and
	// mirrors user content to KV.
	Store Store
	Users UserStore
	KV    KeyValueStore

	Bundle content.Source

	// Retired lists further categories whose predefined records are never
	// returned. Verbs are always retired.
	Retired []entities.Category

	DefaultUserID string
	Now           func() time.Time
}

// Status is a point-in-time view of the service for health and tests.
type Status struct {
	Mode           Mode           `json:"mode"`
	Initialized    bool           `json:"initialized"`
	Refreshing     bool           `json:"refreshing"`
	UserID         string         `json:"user_id,omitempty"`
	StoreAvailable bool           `json:"store_available"`
	Counts         map[string]int `json:"counts"`
	LastError      string         `json:"last_error,omitempty"`
	InitializedAt  *time.Time     `json:"initialized_at,omitempty"`
}

// RefreshAck is returned by ForceRefresh before the refresh has run.
type RefreshAck struct {
	Accepted  bool      `json:"accepted"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"started_at"`
}

// initCall is an initialization pass; callers arriving while it runs wait
// on done instead of starting their own.
type initCall struct {
	userID string
	done   chan struct{}
}

type Service struct {
	store   Store
	users   UserStore
	kv      KeyValueStore
	bundle  content.Source
	retired map[entities.Category]bool
	now     func() time.Time

	defaultUserID string

	mu            sync.RWMutex
	cache         map[entities.Category][]entities.Record
	initialized   bool
	userID        string
	mode          Mode
	lastErr       string
	initializedAt time.Time
	inflight      *initCall
	version       uint64 // bumped by every cache write
	lastIDMillis  int64
}

func NewService(opts Options) *Service {
	s := &Service{
		store:         opts.Store,
		users:         opts.Users,
		kv:            opts.KV,
		bundle:        opts.Bundle,
		retired:       map[entities.Category]bool{entities.CategoryVerb: true},
		now:           opts.Now,
		defaultUserID: opts.DefaultUserID,
		cache:         make(map[entities.Category][]entities.Record),
		mode:          ModeUninitialized,
	}
	if s.bundle == nil {
		s.bundle = content.DirSource{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultUserID == "" {
		s.defaultUserID = DefaultUserID
	}
	for _, c := range opts.Retired {
		s.retired[c] = true
	}
	return s
}

// Initialize loads and merges content for userID. It is a no-op when the
// service is already initialized for the same user. Concurrent callers
// share a single in-flight pass.
func (s *Service) Initialize(ctx context.Context, userID string) {
	if userID == "" {
		userID = s.defaultUserID
	}

	s.mu.Lock()
	if s.initialized && s.userID == userID {
		s.mu.Unlock()
		return
	}
	if call := s.inflight; call != nil && call.userID == userID {
		s.mu.Unlock()
		wait(ctx, call)
		return
	}
	call := &initCall{userID: userID, done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	s.run(call)
}

// ForceRefresh discards the initialized state and reloads in the
// background. It returns before the reload finishes; getters called in the
// meantime wait for it.
func (s *Service) ForceRefresh() RefreshAck {
	call := s.startRefresh()
	go s.run(call)

	log.Printf("[flashcards] refresh started for user %s", call.userID)
	return RefreshAck{
		Accepted:  true,
		Message:   "content refresh started",
		StartedAt: s.now().UTC(),
	}
}

// Refresh reloads synchronously. Used by the task queue and scheduler.
func (s *Service) Refresh(ctx context.Context) Status {
	call := s.startRefresh()
	go s.run(call)
	wait(ctx, call)
	return s.Status()
}

func (s *Service) startRefresh() *initCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.userID
	if userID == "" {
		userID = s.defaultUserID
	}
	s.initialized = false
	call := &initCall{userID: userID, done: make(chan struct{})}
	s.inflight = call
	return call
}

func wait(ctx context.Context, call *initCall) {
	select {
	case <-call.done:
	case <-ctx.Done():
	}
}

func (s *Service) ensureInitialized(ctx context.Context) {
	s.mu.RLock()
	ready := s.initialized
	call := s.inflight
	userID := s.userID
	s.mu.RUnlock()

	if ready {
		return
	}
	if call != nil {
		wait(ctx, call)
		return
	}
	s.Initialize(ctx, userID)
}

// run executes one initialization pass and installs its result unless a
// newer pass has superseded it.
func (s *Service) run(call *initCall) {
	defer close(call.done)

	res := s.load(call.userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != call {
		log.Printf("[flashcards] discarding superseded initialization for user %s", call.userID)
		return
	}
	s.inflight = nil
	s.cache = res.cache
	s.mode = res.mode
	s.lastErr = ""
	if res.err != nil {
		s.lastErr = res.err.Error()
	}
	s.userID = call.userID
	s.initialized = true
	s.initializedAt = s.now().UTC()
	s.version++

	log.Printf("[flashcards] initialized for user %s in %s mode (%s)", call.userID, res.mode, s.countsLocked())
}

type loadResult struct {
	cache map[entities.Category][]entities.Record
	mode  Mode
	err   error
}

func (s *Service) load(userID string) (res loadResult) {
	defer func() {
		if r := recover(); r != nil {
			res = fallbackResult(fmt.Errorf("content load panicked: %v", r))
		}
	}()

	bundle, err := s.bundle.Load()
	if err != nil {
		return fallbackResult(fmt.Errorf("load bundled content: %w", err))
	}

	mode := ModeReady
	if s.store == nil {
		mode = ModeCacheOnly
	}

	if s.users != nil {
		if _, err := s.users.TouchSession(userID); err != nil {
			log.Printf("[flashcards] WARNING: could not record session for %s: %v", userID, err)
		}
	}

	pending := s.unseeded()

	cache := make(map[entities.Category][]entities.Record, len(entities.AllCategories))
	for _, category := range entities.AllCategories {
		raw := content.Concat(bundle.Bundled[category], bundle.Additional[category], s.loadUserRecords(category))
		cache[category] = content.CombineAndValidate(category, raw)
	}

	s.seedShipped(cache, pending)

	return loadResult{cache: cache, mode: mode}
}

func fallbackResult(cause error) loadResult {
	log.Printf("[flashcards] ERROR: %v; using fallback dataset", cause)

	b := content.FallbackBundle()
	cache := make(map[entities.Category][]entities.Record, len(entities.AllCategories))
	for _, category := range entities.AllCategories {
		cache[category] = content.CombineAndValidate(category, content.Concat(b.Bundled[category], b.Additional[category], nil))
	}
	return loadResult{cache: cache, mode: ModeFallback, err: cause}
}

// loadUserRecords returns the learner-created records of a category: the
// non-predefined store rows followed by anything only present in the KV
// mirror. Mirror-only records are written back when the store is healthy.
func (s *Service) loadUserRecords(category entities.Category) []entities.Record {
	mirrored := content.UserOrigin(s.mirrorRecords(category))
	if s.store == nil {
		return mirrored
	}

	recs, err := s.store.GetAll(category)
	if err != nil {
		log.Printf("[flashcards] WARNING: reading %s from store failed, using mirror: %v", category.Table(), err)
		return mirrored
	}
	fromStore := content.UserOrigin(recs)
	return append(fromStore, s.restoreMirrored(category, recs)...)
}

// unseeded returns the categories whose shipped records have never been
// written. A table that already holds rows is marked seeded as it is.
func (s *Service) unseeded() map[entities.Category]bool {
	pending := make(map[entities.Category]bool)
	if s.store == nil {
		return pending
	}
	for _, category := range entities.AllCategories {
		seeded, err := s.store.Seeded(category)
		if err != nil {
			log.Printf("[flashcards] WARNING: reading seed state of %s failed: %v", category.Table(), err)
			continue
		}
		if seeded {
			continue
		}

		count, err := s.store.Count(category)
		if err != nil {
			log.Printf("[flashcards] WARNING: counting %s failed: %v", category.Table(), err)
			continue
		}
		if count > 0 {
			if err := s.store.MarkSeeded(category, 0); err != nil {
				log.Printf("[flashcards] WARNING: %v", err)
			}
			continue
		}
		pending[category] = true
	}
	return pending
}

// seedShipped writes the shipped records of each pending category and
// marks it seeded. Marked categories are never seeded again, so purged
// shipped records stay gone.
func (s *Service) seedShipped(cache map[entities.Category][]entities.Record, pending map[entities.Category]bool) {
	for _, category := range entities.AllCategories {
		if !pending[category] {
			continue
		}
		var shipped []entities.Record
		for _, r := range cache[category] {
			if content.IsPredefined(r) {
				shipped = append(shipped, r)
			}
		}
		inserted, ok := s.selfHeal(category, shipped, true)
		if !ok {
			continue
		}
		if err := s.store.MarkSeeded(category, inserted); err != nil {
			log.Printf("[flashcards] WARNING: %v", err)
		}
	}
}

// Status reports the current mode and cache sizes.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.cache))
	for category, recs := range s.cache {
		counts[category.Table()] = len(recs)
	}

	st := Status{
		Mode:           s.mode,
		Initialized:    s.initialized,
		Refreshing:     s.inflight != nil,
		UserID:         s.userID,
		StoreAvailable: s.store != nil,
		Counts:         counts,
		LastError:      s.lastErr,
	}
	if !s.initializedAt.IsZero() {
		t := s.initializedAt
		st.InitializedAt = &t
	}
	return st
}

// Mode is a shortcut for Status().Mode.
func (s *Service) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Service) countsLocked() string {
	out := ""
	for i, category := range entities.AllCategories {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", category.Table(), len(s.cache[category]))
	}
	return out
}
