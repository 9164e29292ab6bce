// Package maintenance holds operational jobs over the content tables that
// are not part of normal learner flows, chiefly purging shipped records
// that were persisted into the store.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/entities"
)

// Store is the subset of the records repository the purger needs.
type Store interface {
	Count(category entities.Category) (int64, error)
	Scan(category entities.Category, match func(entities.Record) bool) ([]entities.Record, error)
	Delete(category entities.Category, id string) (bool, error)
}

// Predicate selects records.
type Predicate func(entities.Record) bool

// PredefinedPredicate matches rows flagged predefined, tagged with a
// shipped origin, or stored under a bundled id prefix ("word-", "verb-",
// "sentence-", "number-", "fallback-w").
func PredefinedPredicate(r entities.Record) bool {
	return content.IsPurgeable(r)
}

type CategoryReport struct {
	Category entities.Category `json:"category"`
	Scanned  int64             `json:"scanned"`
	Matched  int               `json:"matched"`
	Deleted  int               `json:"deleted"`
	Failed   int               `json:"failed"`
	IDs      []string          `json:"ids,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type Report struct {
	DryRun     bool             `json:"dry_run"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Categories []CategoryReport `json:"categories"`
}

func (r Report) TotalMatched() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Matched
	}
	return n
}

func (r Report) TotalDeleted() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Deleted
	}
	return n
}

func (r Report) TotalFailed() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Failed
	}
	return n
}

type Purger struct {
	store Store
	now   func() time.Time
}

func NewPurger(store Store) *Purger {
	return &Purger{store: store, now: time.Now}
}

// Find returns the records of a category matching the predicate.
func (p *Purger) Find(category entities.Category, match Predicate) ([]entities.Record, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return p.store.Scan(category, match)
}

// Purge deletes every predefined record of the given categories, all
// categories when none are given. With dryRun set nothing is deleted and
// the report lists what would be. Per-record failures are counted and the
// run continues; the returned error joins them.
func (p *Purger) Purge(ctx context.Context, categories []entities.Category, dryRun bool) (Report, error) {
	if len(categories) == 0 {
		categories = entities.AllCategories
	}

	report := Report{DryRun: dryRun, StartedAt: p.now().UTC()}
	var errs []error

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		cr, err := p.purgeCategory(ctx, category, dryRun)
		if err != nil {
			cr.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", category.Table(), err))
		}
		report.Categories = append(report.Categories, cr)

		log.Printf("[maintenance] %s: scanned=%d matched=%d deleted=%d failed=%d dry_run=%t",
			category.Table(), cr.Scanned, cr.Matched, cr.Deleted, cr.Failed, dryRun)
	}

	report.FinishedAt = p.now().UTC()
	return report, errors.Join(errs...)
}

func (p *Purger) purgeCategory(ctx context.Context, category entities.Category, dryRun bool) (CategoryReport, error) {
	cr := CategoryReport{Category: category}

	matches, err := p.scan(&cr)
	if err != nil {
		return cr, err
	}
	if dryRun {
		return cr, nil
	}

	var errs []error
	for _, r := range matches {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		removed, err := p.store.Delete(category, r.ID)
		switch {
		case err != nil:
			cr.Failed++
			errs = append(errs, err)
		case removed:
			cr.Deleted++
		}
	}
	return cr, errors.Join(errs...)
}

// Verify counts the predefined rows left in each category without
// deleting anything.
func (p *Purger) Verify(categories []entities.Category) (Report, error) {
	if len(categories) == 0 {
		categories = entities.AllCategories
	}

	report := Report{DryRun: true, StartedAt: p.now().UTC()}
	var errs []error
	for _, category := range categories {
		cr := CategoryReport{Category: category}
		if _, err := p.scan(&cr); err != nil {
			cr.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", category.Table(), err))
		}
		report.Categories = append(report.Categories, cr)
	}
	report.FinishedAt = p.now().UTC()
	return report, errors.Join(errs...)
}

func (p *Purger) scan(cr *CategoryReport) ([]entities.Record, error) {
	if !cr.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", cr.Category)
	}

	count, err := p.store.Count(cr.Category)
	if err != nil {
		return nil, err
	}
	cr.Scanned = count

	matches, err := p.store.Scan(cr.Category, PredefinedPredicate)
	if err != nil {
		return nil, err
	}
	cr.Matched = len(matches)
	for _, r := range matches {
		cr.IDs = append(cr.IDs, r.ID)
	}
	return matches, nil
}
