package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/session"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps a category listing.
type ListResponse struct {
	Category entities.Category `json:"category"`
	Count    int               `json:"count"`
	Records  []entities.Record `json:"records"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondRejected sends a 422 for records the content layer refused.
func respondRejected(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: message, Code: "rejected"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseCategoryParam reads the :category path parameter. It accepts both
// the singular category name and the table name ("word" or "words").
// Responds with 404 and returns false for unknown categories.
func parseCategoryParam(c *gin.Context) (entities.Category, bool) {
	category, err := entities.ParseCategory(c.Param("category"))
	if err != nil {
		respondNotFound(c, "category")
		return "", false
	}
	return category, true
}

// parseCategoriesQuery reads repeated ?category= values. An empty result
// means every category.
func parseCategoriesQuery(c *gin.Context) ([]entities.Category, bool) {
	var categories []entities.Category
	for _, raw := range c.QueryArray("category") {
		category, err := entities.ParseCategory(raw)
		if err != nil {
			respondBadRequest(c, "unknown category "+strconv.Quote(raw))
			return nil, false
		}
		categories = append(categories, category)
	}
	return categories, true
}

// parseBoolQuery parses an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return false, false
	}
	return v, true
}

// learnerID returns the learner resolved for the request.
func learnerID(c *gin.Context, fallback string) string {
	return session.LearnerID(c, fallback)
}
