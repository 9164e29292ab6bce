package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/frenchmaster/internal/session"
)

// securityHeaders sets the response headers every JSON endpoint gets.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())

	// Session must load before the learner is resolved from it
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadSave())
	}
	router.Use(session.LearnerMiddleware(cfg.Sessions, cfg.DefaultUserID))

	health := NewHealthController(cfg.Database, cfg.Content, cfg.Version)
	contentController := NewContentController(cfg.Content)
	practice := NewPracticeController(cfg.Practice, cfg.DefaultUserID)
	admin := NewAdminController(cfg.Content, cfg.Purger, cfg.Tasks, cfg.Scheduler)
	learners := NewLearnerController(cfg.Learners, cfg.Sessions, cfg.DefaultUserID)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Content
	api.GET("/content/:category", contentController.List)
	api.POST("/content/:category", contentController.Add)
	api.PUT("/content/:category", contentController.Replace)
	api.PUT("/content/:category/:id", contentController.Update)
	api.DELETE("/content/:category/:id", contentController.Delete)

	// Practice
	if cfg.Practice != nil {
		api.GET("/practice/:category/next", practice.Next)
		api.GET("/practice/:category/progress", practice.Progress)
		api.DELETE("/practice/:category/progress", practice.Reset)
		api.POST("/practice/:category/:id/seen", practice.MarkSeen)
	}

	// Learner
	api.GET("/me", learners.Me)
	api.POST("/me/sessions", learners.StartSession)
	api.PUT("/me/preferences/:key", learners.SetPreference)
	api.DELETE("/me/session", learners.Forget)

	// Status and maintenance
	api.GET("/status", admin.Status)
	api.POST("/refresh", admin.Refresh)
	api.POST("/admin/purge-predefined", admin.PurgePredefined)
	api.GET("/admin/verify", admin.Verify)
	api.GET("/tasks/:id", admin.TaskStatus)

	return router
}
