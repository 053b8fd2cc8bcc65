// Package filter narrows the channel catalog by user criteria.
package filter

import (
	"slices"
	"strings"

	"github.com/voyagen/telehaven/internal/models"
)

// Criteria holds optional predicates for filtering the catalog.
// Empty fields always match; set fields are AND-combined.
type Criteria struct {
	Search   string // case-insensitive substring match on name or description
	Language string // exact membership test against the channel's language set
	Category string // exact equality against the channel's category
}

// IsZero reports whether no predicate is set.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Language == "" && c.Category == ""
}

// Apply returns the channels matching c, preserving catalog order.
// Empty criteria returns the input unchanged. There is no ranking: Apply is
// a boolean filter, not a search.
func Apply(channels []models.Channel, c Criteria) []models.Channel {
	if c.IsZero() {
		return channels
	}
	out := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if Matches(ch, c) {
			out = append(out, ch)
		}
	}
	return out
}

// Matches reports whether a single channel satisfies all set predicates.
func Matches(ch models.Channel, c Criteria) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(ch.Name), q) &&
			!strings.Contains(strings.ToLower(ch.Description), q) {
			return false
		}
	}
	if c.Language != "" && !slices.Contains(ch.Language, c.Language) {
		return false
	}
	if c.Category != "" && ch.Category != c.Category {
		return false
	}
	return true
}
