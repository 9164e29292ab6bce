package content

import (
	"strings"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// NormalizeVerb makes sure the english gloss reads as an infinitive.
// A gloss not starting with "to " is replaced by "to <infinitive>".
func NormalizeVerb(r entities.Record) entities.Record {
	if strings.HasPrefix(r.English, "to ") {
		return r
	}
	infinitive := strings.TrimSpace(r.Infinitive)
	if infinitive == "" {
		infinitive = "unknown"
	}
	r.English = "to " + infinitive
	return r
}
