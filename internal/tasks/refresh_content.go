package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/frenchmaster/internal/flashcards"
)

// Refresher reloads the content cache.
type Refresher interface {
	Refresh(ctx context.Context) flashcards.Status
}

// RefreshContentTask reloads bundled and learner content.
type RefreshContentTask struct {
	Reason string `json:"reason,omitempty"`
}

func (t RefreshContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_content",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RefreshContentProcessor(refresher Refresher) backlite.QueueProcessor[RefreshContentTask] {
	return func(ctx context.Context, task RefreshContentTask) error {
		if refresher == nil {
			return fmt.Errorf("content refresher not configured")
		}

		st := refresher.Refresh(ctx)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("refresh content: %w", err)
		}
		if !st.Initialized {
			return fmt.Errorf("refresh content: service not initialized after reload")
		}

		log.Printf("[tasks] content refreshed (%s): mode=%s counts=%v", task.Reason, st.Mode, st.Counts)
		return nil
	}
}

func NewRefreshContentQueue(refresher Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshContentProcessor(refresher))
}
