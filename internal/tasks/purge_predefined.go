package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
)

// PredefinedPurger removes shipped records from the store.
type PredefinedPurger interface {
	Purge(ctx context.Context, categories []entities.Category, dryRun bool) (maintenance.Report, error)
}

// PurgePredefinedTask deletes predefined rows of the listed categories,
// every category when empty, then reloads the content cache.
type PurgePredefinedTask struct {
	Categories []entities.Category `json:"categories,omitempty"`
	DryRun     bool                `json:"dry_run"`
}

func (t PurgePredefinedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_predefined",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: false},
		},
	}
}

// PurgePredefinedProcessor runs the purge. refresher may be nil.
func PurgePredefinedProcessor(purger PredefinedPurger, refresher Refresher) backlite.QueueProcessor[PurgePredefinedTask] {
	return func(ctx context.Context, task PurgePredefinedTask) error {
		if purger == nil {
			return fmt.Errorf("purger not configured")
		}

		report, err := purger.Purge(ctx, task.Categories, task.DryRun)
		log.Printf("[tasks] purge predefined: matched=%d deleted=%d failed=%d dry_run=%t",
			report.TotalMatched(), report.TotalDeleted(), report.TotalFailed(), task.DryRun)
		if err != nil {
			return fmt.Errorf("purge predefined: %w", err)
		}

		if !task.DryRun && report.TotalDeleted() > 0 && refresher != nil {
			refresher.Refresh(ctx)
		}
		return nil
	}
}

func NewPurgePredefinedQueue(purger PredefinedPurger, refresher Refresher) backlite.Queue {
	return backlite.NewQueue(PurgePredefinedProcessor(purger, refresher))
}
