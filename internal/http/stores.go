package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/flashcards"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
	"github.com/mrlokans/frenchmaster/internal/selection"
)

// ContentService is the flashcard content API served over HTTP.
type ContentService interface {
	GetAll(ctx context.Context, category entities.Category) []entities.Record
	AddUserRecord(ctx context.Context, category entities.Category, rec entities.Record) (entities.Record, bool)
	UpdateData(ctx context.Context, category entities.Category, rec entities.Record) (entities.Record, bool)
	DeleteData(ctx context.Context, category entities.Category, id string) bool
	SaveUserContent(ctx context.Context, category entities.Category, recs []entities.Record) bool
	ForceRefresh() flashcards.RefreshAck
	Status() flashcards.Status
}

// PracticeSelector picks practice items and tracks learner exposure.
type PracticeSelector interface {
	GetNextItem(ctx context.Context, category entities.Category, userID string) (*entities.Record, bool)
	MarkItemAsSeen(category entities.Category, itemID, userID string) error
	Progress(ctx context.Context, category entities.Category, userID string) (selection.Progress, error)
	ResetProgress(category entities.Category, userID string) error
}

// PredefinedPurger removes shipped records from the durable store.
type PredefinedPurger interface {
	Purge(ctx context.Context, categories []entities.Category, dryRun bool) (maintenance.Report, error)
	Verify(categories []entities.Category) (maintenance.Report, error)
}

// LearnerStore reads and updates per-learner bookkeeping.
type LearnerStore interface {
	Get(userID string) (*entities.UserData, error)
	TouchSession(userID string) (*entities.UserData, error)
	SetPreference(userID, key, value string) error
}

// TaskQueue enqueues background jobs.
type TaskQueue interface {
	Running() bool
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping() error
}

// RefreshSchedule reports on the periodic content refresh.
type RefreshSchedule interface {
	IsRunning() bool
	IsRefreshing() bool
	NextRunTime() *time.Time
	LastRun() (*time.Time, *flashcards.Status)
}
