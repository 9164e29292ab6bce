// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - flashcards.Store: per-category content tables (internal/flashcards/stores.go)
//   - flashcards.UserStore: learner bookkeeping touched on initialization
//   - flashcards.KeyValueStore: auxiliary string store holding the user-content mirror
//   - maintenance.Store: scan and delete for the purge jobs (internal/maintenance/purger.go)
//   - selection.SeenStore: exposure logs (internal/selection/selector.go)
//
// ## Service Interfaces
//
//   - selection.RecordSource: validated records per category, implemented by flashcards.Service
//   - tasks.Refresher, scheduler.Refresher: synchronous content reload
//   - http.ContentService, http.PracticeSelector, http.PredefinedPurger,
//     http.LearnerStore, http.TaskQueue: what the HTTP layer consumes (internal/http/stores.go)
//
// # Adding a New Content Category
//
//  1. Add the category constant in internal/entities/content.go and append it
//     to AllCategories. Its table is migrated on the next start.
//
//  2. Register its validation policy in internal/content/policy.go:
//
//     CategoryIdiom: {Required: []string{"english", "french"}, Valid: hasEnglishAndFrench},
//
//  3. Ship "<table>.jsonc" in internal/content/data/ if it has bundled records.
//
//  4. Add a mirror key in internal/flashcards/mirror.go if learners may author it.
//
// # Adding a New Background Job
//
//  1. Define the task and its queue config in internal/tasks/:
//
//     type ExportTask struct{ Category entities.Category }
//
//     func (t ExportTask) Config() backlite.QueueConfig
//
//  2. Provide a processor and NewExportQueue, and register it in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
