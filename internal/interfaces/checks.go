package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/database/userdata"
	"github.com/mrlokans/frenchmaster/internal/flashcards"
	"github.com/mrlokans/frenchmaster/internal/http"
	"github.com/mrlokans/frenchmaster/internal/kvstore"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
	"github.com/mrlokans/frenchmaster/internal/scheduler"
	"github.com/mrlokans/frenchmaster/internal/selection"
	"github.com/mrlokans/frenchmaster/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Content tables
var _ flashcards.Store = (*records.Repository)(nil)
var _ maintenance.Store = (*records.Repository)(nil)

// Learner bookkeeping
var _ flashcards.UserStore = (*userdata.Repository)(nil)
var _ http.LearnerStore = (*userdata.Repository)(nil)

// Auxiliary key/value state
var _ flashcards.KeyValueStore = (*kvstore.Store)(nil)
var _ selection.SeenStore = (*kvstore.Store)(nil)

// Health
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Content Layer
// =============================================================================

// Bundle sources
var _ content.Source = content.DirSource{}
var _ content.Source = content.StaticSource{}

// The content service feeds the selector, the HTTP API and background jobs
var _ selection.RecordSource = (*flashcards.Service)(nil)
var _ http.ContentService = (*flashcards.Service)(nil)
var _ tasks.Refresher = (*flashcards.Service)(nil)
var _ scheduler.Refresher = (*flashcards.Service)(nil)

// =============================================================================
// Practice & Maintenance
// =============================================================================

var _ http.PracticeSelector = (*selection.Selector)(nil)
var _ http.PredefinedPurger = (*maintenance.Purger)(nil)
var _ tasks.PredefinedPurger = (*maintenance.Purger)(nil)

// =============================================================================
// Background Jobs
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.RefreshSchedule = (*scheduler.RefreshScheduler)(nil)
