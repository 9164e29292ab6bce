// Package database provides the durable store for flashcard content.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, per-category table migration, schema version
//	├── records/         # Per-category content tables (words, verbs, sentences, numbers)
//	└── userdata/        # Learner session bookkeeping
//
// Every content category has its own table keyed by the record id. The
// tables share the entities.Record shape and are addressed by name, so a
// single repository serves all four of them.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./frenchmaster.db")
//	if errors.Is(err, database.ErrStorageUnavailable) {
//		// continue without a store
//	}
//
//	recordsRepo := records.NewRepository(db.DB)
//	words, err := recordsRepo.GetAll(entities.CategoryWord)
//
// # Interface Implementations
//
//   - records.Repository: implements flashcards.Store and maintenance.Store
//   - userdata.Repository: implements flashcards.UserStore
//
// Compile-time checks live in internal/interfaces.
package database
