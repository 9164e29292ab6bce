package flashcards

import "github.com/mrlokans/frenchmaster/internal/entities"

// This file collects the interfaces the service needs from its collaborators.

// Store is the durable per-category table store.
type Store interface {
	GetAll(category entities.Category) ([]entities.Record, error)
	GetByID(category entities.Category, id string) (*entities.Record, error)
	Count(category entities.Category) (int64, error)
	Add(category entities.Category, rec *entities.Record) error
	Update(category entities.Category, rec *entities.Record) error
	Delete(category entities.Category, id string) (bool, error)
	BulkAdd(category entities.Category, recs []entities.Record) (int, error)
	Clear(category entities.Category) error

	// Seeded and MarkSeeded track whether shipped records were written.
	Seeded(category entities.Category) (bool, error)
	MarkSeeded(category entities.Category, inserted int) error
}

// UserStore records learner sessions.
type UserStore interface {
	TouchSession(userID string) (*entities.UserData, error)
}

// KeyValueStore is the auxiliary string store used to mirror user content
// when the durable store is unavailable.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}
