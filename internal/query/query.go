// Package query derives presentation views from note snapshots: a pure
// filter + sort with no side effects on the source collection.
package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dmitrijs2005/gophnotes/internal/models"
)

// SortOption selects the ordering applied within each pinned group.
type SortOption string

const (
	SortUpdatedNewest SortOption = "updated_newest"
	SortUpdatedOldest SortOption = "updated_oldest"
	SortTitleAZ       SortOption = "title_az"
	SortTitleZA       SortOption = "title_za"
)

// ParseSortOption converts a user-supplied string into a SortOption.
func ParseSortOption(s string) (SortOption, error) {
	switch opt := SortOption(s); opt {
	case SortUpdatedNewest, SortUpdatedOldest, SortTitleAZ, SortTitleZA:
		return opt, nil
	default:
		return "", fmt.Errorf("unknown sort option %q", s)
	}
}

// Project returns the notes matching searchQuery, ordered for display.
//
// A non-empty query keeps notes whose title, body, or category contains it
// case-insensitively. Pinned notes always come before unpinned ones; within
// each group the sort option applies, with title comparisons delegated to a
// locale-aware collator. Ties keep their input order (stable sort), and the
// input slice is never modified.
func Project(notes []models.Note, searchQuery string, sortOption SortOption) []models.Note {
	result := make([]models.Note, 0, len(notes))

	q := strings.ToLower(searchQuery)
	for _, n := range notes {
		if q == "" || matches(n, q) {
			result = append(result, n)
		}
	}

	c := collate.New(language.Und)
	sort.SliceStable(result, func(i, j int) bool {
		return less(c, result[i], result[j], sortOption)
	})

	return result
}

func matches(n models.Note, q string) bool {
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Body), q) ||
		strings.Contains(strings.ToLower(n.Category), q)
}

func less(c *collate.Collator, a, b models.Note, opt SortOption) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}

	switch opt {
	case SortUpdatedOldest:
		return a.UpdatedAt < b.UpdatedAt
	case SortTitleAZ:
		return c.CompareString(a.Title, b.Title) < 0
	case SortTitleZA:
		return c.CompareString(a.Title, b.Title) > 0
	default:
		// SortUpdatedNewest is also the fallback for unknown options.
		return a.UpdatedAt > b.UpdatedAt
	}
}
