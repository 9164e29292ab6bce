package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/session"
)

// LearnerController exposes the current learner's bookkeeping.
type LearnerController struct {
	learners      LearnerStore
	sessions      *session.Manager
	defaultUserID string
}

func NewLearnerController(learners LearnerStore, sessions *session.Manager, defaultUserID string) *LearnerController {
	return &LearnerController{learners: learners, sessions: sessions, defaultUserID: defaultUserID}
}

type LearnerResponse struct {
	LearnerID        string             `json:"learner_id"`
	SessionStartedAt *time.Time         `json:"session_started_at,omitempty"`
	Data             *entities.UserData `json:"data"`
}

// Me handles GET /api/me
func (lc *LearnerController) Me(c *gin.Context) {
	id := learnerID(c, lc.defaultUserID)
	resp := LearnerResponse{LearnerID: id}
	if lc.sessions != nil && lc.sessions.LearnerID(c.Request) == id {
		if started := lc.sessions.StartedAt(c.Request); !started.IsZero() {
			resp.SessionStartedAt = &started
		}
	}

	if lc.learners != nil {
		data, err := lc.learners.Get(id)
		switch {
		case err == nil:
			resp.Data = data
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			respondInternalError(c, err, "get learner")
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// StartSession handles POST /api/me/sessions
// Clients call it once per practice session to bump the session counter.
func (lc *LearnerController) StartSession(c *gin.Context) {
	if lc.learners == nil {
		respondError(c, http.StatusServiceUnavailable, "durable store not available")
		return
	}

	id := learnerID(c, lc.defaultUserID)
	data, err := lc.learners.TouchSession(id)
	if err != nil {
		respondInternalError(c, err, "start session")
		return
	}
	c.JSON(http.StatusOK, LearnerResponse{LearnerID: id, Data: data})
}

type preferenceRequest struct {
	Value string `json:"value"`
}

// SetPreference handles PUT /api/me/preferences/:key
func (lc *LearnerController) SetPreference(c *gin.Context) {
	if lc.learners == nil {
		respondError(c, http.StatusServiceUnavailable, "durable store not available")
		return
	}

	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := lc.learners.SetPreference(learnerID(c, lc.defaultUserID), c.Param("key"), req.Value); err != nil {
		respondInternalError(c, err, "set preference")
		return
	}
	respondSuccess(c, "preference saved")
}

// Forget handles DELETE /api/me/session
// The cookie is cleared and the next request is issued a new learner id.
// Stored learner data and exposure logs are kept.
func (lc *LearnerController) Forget(c *gin.Context) {
	if lc.sessions == nil {
		respondError(c, http.StatusServiceUnavailable, "sessions not configured")
		return
	}
	if err := lc.sessions.Forget(c.Request); err != nil {
		respondInternalError(c, err, "forget session")
		return
	}
	respondSuccess(c, "session cleared")
}
