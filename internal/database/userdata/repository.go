// Package userdata provides database operations for per-learner bookkeeping.
//
// # Usage
//
//	repo := userdata.NewRepository(db)
//	data, err := repo.TouchSession("learner-1")
package userdata

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// Repository handles the user_data table.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new user data repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Get returns the stored data for a learner.
func (r *Repository) Get(userID string) (*entities.UserData, error) {
	var data entities.UserData
	err := r.db.Where("id = ?", userID).First(&data).Error
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// TouchSession records a new session for the learner, creating the row on first use.
func (r *Repository) TouchSession(userID string) (*entities.UserData, error) {
	var data entities.UserData
	result := r.db.Where("id = ?", userID).First(&data)

	now := r.now().UTC()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		data = entities.UserData{
			ID:            userID,
			SessionCount:  1,
			LastSessionAt: now,
		}
		return &data, r.db.Create(&data).Error
	} else if result.Error != nil {
		return nil, result.Error
	}

	data.SessionCount++
	data.LastSessionAt = now
	return &data, r.db.Save(&data).Error
}

// SetPreference stores a single preference value for the learner.
func (r *Repository) SetPreference(userID, key, value string) error {
	data, err := r.Get(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		data = &entities.UserData{ID: userID, LastSessionAt: r.now().UTC()}
	} else if err != nil {
		return err
	}

	if data.Preferences == nil {
		data.Preferences = make(map[string]string)
	}
	data.Preferences[key] = value
	return r.db.Save(data).Error
}
