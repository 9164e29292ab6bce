package session

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderLearnerID lets API clients pick the learner explicitly.
	HeaderLearnerID = "X-Learner-ID"

	// ContextKeyLearnerID is the gin context key holding the resolved learner.
	ContextKeyLearnerID = "learner_id"
)

var learnerIDPattern = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,128}$`)

// ValidLearnerID reports whether id can be used as a learner id. The id
// becomes part of store keys, so only a conservative charset is allowed.
func ValidLearnerID(id string) bool {
	return learnerIDPattern.MatchString(id)
}

// LearnerMiddleware resolves the learner for the request: the
// X-Learner-ID header wins, then the id kept in the session, and a fresh
// uuid is issued otherwise. A nil manager falls back to fallbackID.
func LearnerMiddleware(m *Manager, fallbackID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderLearnerID)); id != "" {
			if !ValidLearnerID(id) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "invalid learner id",
					"code":  http.StatusBadRequest,
				})
				return
			}
			c.Set(ContextKeyLearnerID, id)
			c.Next()
			return
		}

		if m == nil {
			c.Set(ContextKeyLearnerID, fallbackID)
			c.Next()
			return
		}

		id := m.LearnerID(c.Request)
		if id == "" {
			id = uuid.NewString()
			ctx := c.Request.Context()
			m.Put(ctx, KeyLearnerID, id)
			m.Put(ctx, KeyStartedAt, time.Now().UTC())
		}
		c.Set(ContextKeyLearnerID, id)
		c.Next()
	}
}

// LearnerID returns the learner resolved by LearnerMiddleware, or
// fallbackID when the middleware did not run.
func LearnerID(c *gin.Context, fallbackID string) string {
	if id := c.GetString(ContextKeyLearnerID); id != "" {
		return id
	}
	return fallbackID
}
