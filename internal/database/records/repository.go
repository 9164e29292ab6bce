// Package records provides database operations for flashcard content.
//
// Each category is stored in its own table (words, verbs, sentences,
// numbers) keyed by the record id.
//
// # Interface Implementation
//
//	var _ flashcards.Store = (*Repository)(nil)
//	var _ maintenance.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := records.NewRepository(db)
//	words, err := repo.GetAll(entities.CategoryWord)
package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

var (
	// ErrDuplicateKey is returned by Add when the id already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned by GetByID when no record has the id.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record without an id is written.
	ErrInvalidRecord = errors.New("record has no id")
)

// Repository handles all content table operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new records repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) table(category entities.Category) (*gorm.DB, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return r.db.Table(category.Table()), nil
}

// GetAll returns every record of the category. Order is not guaranteed.
func (r *Repository) GetAll(category entities.Category) ([]entities.Record, error) {
	q, err := r.table(category)
	if err != nil {
		return nil, err
	}
	var recs []entities.Record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("get all %s: %w", category.Table(), err)
	}
	return recs, nil
}

// GetByID retrieves a single record.
func (r *Repository) GetByID(category entities.Category, id string) (*entities.Record, error) {
	q, err := r.table(category)
	if err != nil {
		return nil, err
	}
	var rec entities.Record
	err = q.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of rows in the category table.
func (r *Repository) Count(category entities.Category) (int64, error) {
	q, err := r.table(category)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", category.Table(), err)
	}
	return n, nil
}

// Add inserts a new record. It fails with ErrDuplicateKey if the id exists.
func (r *Repository) Add(category entities.Category, rec *entities.Record) error {
	if rec.ID == "" {
		return ErrInvalidRecord
	}
	q, err := r.table(category)
	if err != nil {
		return err
	}
	if err := q.Create(rec).Error; err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateKey, category.Table(), rec.ID)
		}
		return fmt.Errorf("add %s/%s: %w", category.Table(), rec.ID, err)
	}
	return nil
}

// Update writes the record, inserting it when the id is not present yet.
func (r *Repository) Update(category entities.Category, rec *entities.Record) error {
	if rec.ID == "" {
		return ErrInvalidRecord
	}
	q, err := r.table(category)
	if err != nil {
		return err
	}
	err = q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", category.Table(), rec.ID, err)
	}
	return nil
}

// Delete removes a record by id. A missing id reports false without error.
func (r *Repository) Delete(category entities.Category, id string) (bool, error) {
	q, err := r.table(category)
	if err != nil {
		return false, err
	}
	result := q.Where("id = ?", id).Delete(&entities.Record{})
	if result.Error != nil {
		return false, fmt.Errorf("delete %s/%s: %w", category.Table(), id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// BulkAdd inserts records one by one. It is not all-or-nothing: rows that
// fail (duplicates included) are skipped, and the returned error joins
// every failure. The count is the number of rows actually inserted.
func (r *Repository) BulkAdd(category entities.Category, recs []entities.Record) (int, error) {
	if _, err := r.table(category); err != nil {
		return 0, err
	}

	var (
		inserted int
		errs     []error
	)
	for i := range recs {
		rec := recs[i]
		if err := r.Add(category, &rec); err != nil {
			errs = append(errs, err)
			continue
		}
		inserted++
	}
	return inserted, errors.Join(errs...)
}

// Clear removes every row of the category table and nothing else.
func (r *Repository) Clear(category entities.Category) error {
	q, err := r.table(category)
	if err != nil {
		return err
	}
	err = q.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Record{}).Error
	if err != nil {
		return fmt.Errorf("clear %s: %w", category.Table(), err)
	}
	return nil
}

// Seeded reports whether the shipped records of the category have been
// written to the store at some point.
func (r *Repository) Seeded(category entities.Category) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("unknown category %q", category)
	}
	var n int64
	err := r.db.Model(&entities.SeedState{}).Where("category = ?", category).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("read seed state of %s: %w", category.Table(), err)
	}
	return n > 0, nil
}

// MarkSeeded records that the category has received its shipped records.
// An existing marker is kept as is.
func (r *Repository) MarkSeeded(category entities.Category, inserted int) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	state := entities.SeedState{Category: category, Records: inserted, SeededAt: time.Now().UTC()}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("mark %s seeded: %w", category.Table(), err)
	}
	return nil
}

// Scan returns the records of the category matching the predicate.
// A nil predicate matches everything.
func (r *Repository) Scan(category entities.Category, match func(entities.Record) bool) ([]entities.Record, error) {
	recs, err := r.GetAll(category)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return recs, nil
	}
	out := recs[:0]
	for _, rec := range recs {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// isDuplicateErr covers both the translated gorm error and the raw sqlite
// message, which is what older drivers surface.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique constraint") || strings.Contains(s, "primary key must be unique")
}
