package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/frenchmaster/internal/flashcards"
	"github.com/mrlokans/frenchmaster/internal/tasks"
)

// AdminController exposes refresh and maintenance operations.
type AdminController struct {
	content   ContentService
	purger    PredefinedPurger
	tasks     TaskQueue
	scheduler RefreshSchedule
}

func NewAdminController(content ContentService, purger PredefinedPurger, queue TaskQueue, scheduler RefreshSchedule) *AdminController {
	return &AdminController{content: content, purger: purger, tasks: queue, scheduler: scheduler}
}

type SchedulerStatus struct {
	Running    bool            `json:"running"`
	Refreshing bool            `json:"refreshing"`
	NextRunAt  *time.Time      `json:"next_run_at,omitempty"`
	LastRunAt  *time.Time      `json:"last_run_at,omitempty"`
	LastMode   flashcards.Mode `json:"last_mode,omitempty"`
}

// StatusResponse is the content service status plus the refresh schedule.
type StatusResponse struct {
	flashcards.Status
	Scheduler *SchedulerStatus `json:"scheduler,omitempty"`
}

func (ac *AdminController) queueRunning() bool {
	return ac.tasks != nil && ac.tasks.Running()
}

// Status handles GET /api/status
func (ac *AdminController) Status(c *gin.Context) {
	resp := StatusResponse{Status: ac.content.Status()}
	if ac.scheduler != nil {
		sched := &SchedulerStatus{
			Running:    ac.scheduler.IsRunning(),
			Refreshing: ac.scheduler.IsRefreshing(),
			NextRunAt:  ac.scheduler.NextRunTime(),
		}
		if at, st := ac.scheduler.LastRun(); at != nil {
			sched.LastRunAt = at
			if st != nil {
				sched.LastMode = st.Mode
			}
		}
		resp.Scheduler = sched
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /api/refresh
// The reload happens in the background either way; with the task queue
// running it goes through the queue so that retries apply.
func (ac *AdminController) Refresh(c *gin.Context) {
	if ac.queueRunning() {
		id, err := ac.tasks.Enqueue(tasks.RefreshContentTask{Reason: "api"})
		if err != nil {
			respondInternalError(c, err, "enqueue refresh")
			return
		}
		respondAccepted(c, "refresh enqueued", gin.H{"task_id": id})
		return
	}

	ack := ac.content.ForceRefresh()
	respondAccepted(c, ack.Message, ack)
}

// PurgePredefined handles POST /api/admin/purge-predefined
// Query: dry_run=true, category=<name> (repeatable).
func (ac *AdminController) PurgePredefined(c *gin.Context) {
	if ac.purger == nil {
		respondError(c, http.StatusServiceUnavailable, "durable store not available")
		return
	}

	categories, ok := parseCategoriesQuery(c)
	if !ok {
		return
	}
	dryRun, ok := parseBoolQuery(c, "dry_run")
	if !ok {
		return
	}

	if ac.queueRunning() && !dryRun {
		id, err := ac.tasks.Enqueue(tasks.PurgePredefinedTask{Categories: categories})
		if err != nil {
			respondInternalError(c, err, "enqueue purge")
			return
		}
		respondAccepted(c, "purge enqueued", gin.H{"task_id": id})
		return
	}

	report, err := ac.purger.Purge(c.Request.Context(), categories, dryRun)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "purge finished with errors",
			Details: report,
		})
		return
	}
	if !dryRun && report.TotalDeleted() > 0 {
		ac.content.ForceRefresh()
	}
	c.JSON(http.StatusOK, report)
}

// Verify handles GET /api/admin/verify
func (ac *AdminController) Verify(c *gin.Context) {
	if ac.purger == nil {
		respondError(c, http.StatusServiceUnavailable, "durable store not available")
		return
	}

	categories, ok := parseCategoriesQuery(c)
	if !ok {
		return
	}

	report, err := ac.purger.Verify(categories)
	if err != nil {
		respondInternalError(c, err, "verify store")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clean":  report.TotalMatched() == 0,
		"report": report,
	})
}

// TaskStatus handles GET /api/tasks/:id
func (ac *AdminController) TaskStatus(c *gin.Context) {
	if ac.tasks == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := ac.tasks.Status(ctx, c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     c.Param("id"),
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
