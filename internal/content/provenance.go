package content

import (
	"strings"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// LegacyFallbackPrefix marks word ids from an old embedded fallback set.
const LegacyFallbackPrefix = "fallback-w"

// PredefinedPrefixes are the id prefixes bundled content has been written
// under. They only matter for rows stored before records carried an origin.
func PredefinedPrefixes() []string {
	prefixes := make([]string, 0, len(entities.AllCategories)+1)
	for _, c := range entities.AllCategories {
		prefixes = append(prefixes, c.IDPrefix())
	}
	return append(prefixes, LegacyFallbackPrefix)
}

// HasPredefinedID reports whether id follows a bundled naming convention.
func HasPredefinedID(id string) bool {
	for _, p := range PredefinedPrefixes() {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// IsPredefined reports whether a record is shipped content. The origin is
// authoritative; rows without one fall back to the flag and id prefix.
func IsPredefined(r entities.Record) bool {
	if r.Origin != "" {
		return r.Origin.Predefined() || r.IsPredefined
	}
	return r.IsPredefined || HasPredefinedID(r.ID)
}

// IsPurgeable is the maintenance predicate: anything flagged predefined or
// stored under a bundled id prefix, regardless of origin.
func IsPurgeable(r entities.Record) bool {
	return r.IsPredefined || r.Origin.Predefined() || HasPredefinedID(r.ID)
}

// ClassifyLegacy fills in the origin of a row stored without one.
func ClassifyLegacy(r entities.Record) entities.Record {
	if r.Origin != "" {
		return r
	}
	if IsPredefined(r) {
		r.Origin = entities.OriginBundled
		r.IsPredefined = true
	} else {
		r.Origin = entities.OriginUser
	}
	return r
}

// UserOrigin keeps the records that were created by a learner.
func UserOrigin(records []entities.Record) []entities.Record {
	out := make([]entities.Record, 0, len(records))
	for _, r := range records {
		r = ClassifyLegacy(r)
		if IsPredefined(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
