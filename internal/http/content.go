package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// ContentController serves the flashcard content of each category.
type ContentController struct {
	content ContentService
}

func NewContentController(content ContentService) *ContentController {
	return &ContentController{content: content}
}

// List handles GET /api/content/:category
func (cc *ContentController) List(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	recs := cc.content.GetAll(c.Request.Context(), category)
	c.JSON(http.StatusOK, ListResponse{Category: category, Count: len(recs), Records: recs})
}

// Add handles POST /api/content/:category
// The server assigns the id; numbers cannot be added.
func (cc *ContentController) Add(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	var rec entities.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	saved, ok := cc.content.AddUserRecord(c.Request.Context(), category, rec)
	if !ok {
		respondRejected(c, "record was not added")
		return
	}
	respondCreated(c, saved)
}

// Replace handles PUT /api/content/:category
// The body replaces the learner-authored records of the category.
func (cc *ContentController) Replace(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	var recs []entities.Record
	if err := c.ShouldBindJSON(&recs); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if !cc.content.SaveUserContent(c.Request.Context(), category, recs) {
		respondRejected(c, "content was not saved")
		return
	}
	recs = cc.content.GetAll(c.Request.Context(), category)
	c.JSON(http.StatusOK, ListResponse{Category: category, Count: len(recs), Records: recs})
}

// Update handles PUT /api/content/:category/:id
func (cc *ContentController) Update(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var rec entities.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if rec.ID != "" && rec.ID != id {
		respondBadRequest(c, "id in body does not match path")
		return
	}
	rec.ID = id

	saved, ok := cc.content.UpdateData(c.Request.Context(), category, rec)
	if !ok {
		respondRejected(c, "record was not updated")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Delete handles DELETE /api/content/:category/:id
func (cc *ContentController) Delete(c *gin.Context) {
	category, ok := parseCategoryParam(c)
	if !ok {
		return
	}

	if !cc.content.DeleteData(c.Request.Context(), category, c.Param("id")) {
		respondNotFound(c, "record")
		return
	}
	respondSuccess(c, "record deleted")
}
