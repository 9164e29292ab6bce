package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/frenchmaster/internal/flashcards"
)

// refreshTimeout bounds a single scheduled reload.
const refreshTimeout = 5 * time.Minute

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Refresher reloads content.
type Refresher interface {
	Refresh(ctx context.Context) flashcards.Status
}

// RefreshScheduler periodically reloads the content cache so edits made
// to the store or the dataset directory outside the service show up.
type RefreshScheduler struct {
	refresher Refresher
	enabled   bool
	schedule  string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	refreshing bool
	lastRunAt  *time.Time
	lastStatus *flashcards.Status
	cancelFunc context.CancelFunc
}

func NewRefreshScheduler(refresher Refresher, enabled bool, schedule string) *RefreshScheduler {
	return &RefreshScheduler{
		refresher: refresher,
		enabled:   enabled,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start registers the refresh job. A disabled scheduler starts nothing.
// The scheduler stops itself when ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.enabled {
		log.Printf("Refresh scheduler: disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Refresh scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running refresh and stops the scheduler.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}
	log.Printf("Refresh scheduler: stopped")
}

// RunNow triggers an immediate refresh in the background.
func (s *RefreshScheduler) RunNow() {
	go s.runRefresh()
}

func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *RefreshScheduler) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// LastRun returns when the last refresh finished and its resulting status.
func (s *RefreshScheduler) LastRun() (*time.Time, *flashcards.Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunAt, s.lastStatus
}

// NextRunTime returns when the next refresh will occur.
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		log.Printf("Refresh scheduler: skipped (already refreshing)")
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	started := time.Now()
	st := s.refresher.Refresh(ctx)
	finished := time.Now()

	s.mu.Lock()
	s.refreshing = false
	s.lastRunAt = &finished
	s.lastStatus = &st
	s.mu.Unlock()

	log.Printf("Refresh scheduler: content reloaded in %v (mode=%s)", finished.Sub(started).Round(time.Millisecond), st.Mode)
}
