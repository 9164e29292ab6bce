package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PracticeController hands out practice items per learner.
type PracticeController struct {
	selector      PracticeSelector
	defaultUserID string
}

func NewPracticeController(selector PracticeSelector, defaultUserID string) *PracticeController {
	return &PracticeController{selector: selector, defaultUserID: defaultUserID}
}

// Next handles GET /api/practice/:category/next
func (pc *PracticeController) Next(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	rec, ok := pc.selector.GetNextItem(c.Request.Context(), category, learnerID(c, pc.defaultUserID))
	if !ok {
		respondNotFound(c, "practice item")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// MarkSeen handles POST /api/practice/:category/:id/seen
func (pc *PracticeController) MarkSeen(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	if err := pc.selector.MarkItemAsSeen(category, c.Param("id"), learnerID(c, pc.defaultUserID)); err != nil {
		respondInternalError(c, err, "mark item as seen")
		return
	}
	respondSuccess(c, "marked as seen")
}

// Progress handles GET /api/practice/:category/progress
func (pc *PracticeController) Progress(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	p, err := pc.selector.Progress(c.Request.Context(), category, learnerID(c, pc.defaultUserID))
	if err != nil {
		respondInternalError(c, err, "practice progress")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Reset handles DELETE /api/practice/:category/progress
func (pc *PracticeController) Reset(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	if err := pc.selector.ResetProgress(category, learnerID(c, pc.defaultUserID)); err != nil {
		respondInternalError(c, err, "reset progress")
		return
	}
	respondSuccess(c, "progress reset")
}
