package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/frenchmaster/internal/flashcards"
)

// Overall verdicts of /health. Only unhealthy answers 503; a degraded
// service still serves learners from its cache or the fallback dataset.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

// ContentHealth summarises the content cache for operators.
type ContentHealth struct {
	Mode       flashcards.Mode `json:"mode"`
	Refreshing bool            `json:"refreshing"`
	Records    map[string]int  `json:"records"`
	LastError  string          `json:"last_error,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	CheckedAt time.Time         `json:"checked_at"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	Content   *ContentHealth    `json:"content,omitempty"`
}

type HealthController struct {
	db      Pinger
	content ContentService
	version string
	now     func() time.Time
}

func NewHealthController(db Pinger, content ContentService, version string) *HealthController {
	return &HealthController{
		db:      db,
		content: content,
		version: version,
		now:     time.Now,
	}
}

// Status runs the database and content checks. A database that is
// configured but not answering makes the service unhealthy; running
// without one, or on the fallback dataset, only degrades it.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:    healthHealthy,
		CheckedAt: h.now().UTC(),
		Version:   h.version,
		Checks:    make(map[string]string, 2),
	}

	resp.Checks["database"] = h.checkDatabase(&resp)
	if h.content != nil {
		st := h.content.Status()
		resp.Checks["content"] = string(st.Mode)
		resp.Content = &ContentHealth{
			Mode:       st.Mode,
			Refreshing: st.Refreshing,
			Records:    st.Counts,
			LastError:  st.LastError,
		}
		if st.Mode == flashcards.ModeFallback || st.Mode == flashcards.ModeCacheOnly {
			resp.degrade()
		}
	}

	code := http.StatusOK
	if resp.Status == healthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

// Ping answers liveness checks without touching any dependency.
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *HealthController) checkDatabase(resp *HealthResponse) string {
	if h.db == nil {
		resp.degrade()
		return "not configured"
	}
	if err := h.db.Ping(); err != nil {
		resp.Status = healthUnhealthy
		return "error: " + err.Error()
	}
	return "ok"
}

func (r *HealthResponse) degrade() {
	if r.Status == healthHealthy {
		r.Status = healthDegraded
	}
}
