// Package content merges the bundled, additional and user-created record
// sets of a category into the validated set the service caches.
package content

import (
	"fmt"
	"log"
	"strconv"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// Concat tags each source with its origin and concatenates them in the
// fixed order bundled, additional, user. Generated ids depend on that order,
// so callers must not reorder the sources between runs.
func Concat(bundled, additional, user []entities.Record) []entities.Record {
	out := make([]entities.Record, 0, len(bundled)+len(additional)+len(user))
	out = append(out, Tag(bundled, entities.OriginBundled)...)
	out = append(out, Tag(additional, entities.OriginAdditional)...)
	for _, r := range user {
		r = r.Clone()
		if r.Origin == "" {
			r.Origin = entities.OriginUser
		}
		r.IsPredefined = r.Origin.Predefined()
		out = append(out, r)
	}
	return out
}

// Tag returns copies of records marked with the given origin.
func Tag(records []entities.Record, origin entities.Origin) []entities.Record {
	out := make([]entities.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		r.Origin = origin
		r.IsPredefined = origin.Predefined()
		out[i] = r
	}
	return out
}

// CombineAndValidate assigns ids to records lacking one, drops records that
// fail the category policy and removes duplicate ids, keeping the first
// occurrence. The relative order of survivors is preserved and the input is
// not modified.
//
// A missing id becomes "<category>-<position>", position being the 0-based
// index in records. If that id is already used explicitly by another record,
// "-1", "-2", ... is appended until it is free.
func CombineAndValidate(category entities.Category, records []entities.Record) []entities.Record {
	taken := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID != "" {
			taken[r.ID] = struct{}{}
		}
	}

	out := make([]entities.Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	var dropped, duplicates int

	for i, r := range records {
		r = r.Clone()
		if r.ID == "" {
			r.ID = generateID(category, i, taken)
			taken[r.ID] = struct{}{}
		}
		r.Category = category
		if r.French != nil {
			r.French = r.French.Clean()
		}

		if !Valid(category, r) {
			dropped++
			continue
		}
		if _, dup := seen[r.ID]; dup {
			duplicates++
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	if dropped > 0 || duplicates > 0 {
		log.Printf("[content] %s: dropped %d invalid and %d duplicate records", category.Table(), dropped, duplicates)
	}
	return out
}

func generateID(category entities.Category, position int, taken map[string]struct{}) string {
	base := category.IDPrefix() + strconv.Itoa(position)
	id := base
	for k := 1; ; k++ {
		if _, used := taken[id]; !used {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, k)
	}
}
