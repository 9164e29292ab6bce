package http

import (
	"github.com/mrlokans/frenchmaster/internal/session"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable the routes that need them.
type RouterConfig struct {
	// Core dependencies
	Content  ContentService
	Practice PracticeSelector

	// Optional: absent when running without a durable store
	Purger   PredefinedPurger
	Learners LearnerStore
	Database Pinger

	// Background jobs; nil or stopped means admin actions run inline
	Tasks     TaskQueue
	Scheduler RefreshSchedule

	// Learner identity
	Sessions      *session.Manager
	DefaultUserID string

	// Application info
	Version string
}
