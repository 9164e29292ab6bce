package entities

import "time"

// UserData tracks a learner across sessions. The learner id is opaque:
// it comes from a header, the HTTP session or the CLI.
type UserData struct {
	ID            string            `gorm:"primaryKey;size:128" json:"id"`
	SessionCount  int               `json:"session_count"`
	LastSessionAt time.Time         `json:"last_session_at"`
	Preferences   map[string]string `gorm:"serializer:json;type:text" json:"preferences,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (UserData) TableName() string {
	return "user_data"
}

// SchemaInfo holds the single schema version the store was created with.
type SchemaInfo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

func (SchemaInfo) TableName() string {
	return "schema_info"
}

// SeedState marks a category whose shipped records were written to the
// store. Purging rows leaves the marker, so the records are not seeded again.
type SeedState struct {
	Category Category  `gorm:"primaryKey;size:32" json:"category"`
	Records  int       `json:"records"`
	SeededAt time.Time `json:"seeded_at"`
}

func (SeedState) TableName() string {
	return "seed_state"
}
