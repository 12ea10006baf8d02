// Package projector derives the display order of feature requests. Every
// function here is pure: inputs are never modified and nothing is cached.
package projector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joescharf/votehub/internal/models"
)

// ErrInvalidSortKey is returned for a sort key other than votes or recent.
var ErrInvalidSortKey = errors.New("invalid sort key")

// SortKey selects the display ordering.
type SortKey string

const (
	SortByVotes  SortKey = "votes"
	SortByRecent SortKey = "recent"
)

// ParseSortKey converts s into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByVotes, SortByRecent:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("%w: %q (want votes or recent)", ErrInvalidSortKey, s)
}

// Project returns the features whose category equals filter (every feature
// when filter is models.FilterAll), ordered by sortKey. Ties keep their
// relative order from collection. An unrecognised sortKey leaves the filtered
// features in collection order.
func Project(collection []*models.FeatureRequest, filter string, sortKey SortKey) []*models.FeatureRequest {
	out := make([]*models.FeatureRequest, 0, len(collection))
	for _, f := range collection {
		if filter == models.FilterAll || f.Category == filter {
			out = append(out, f)
		}
	}

	switch sortKey {
	case SortByVotes:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Votes > out[j].Votes
		})
	case SortByRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return models.DateOnly(out[i].Date).After(models.DateOnly(out[j].Date))
		})
	}
	return out
}

// CategoryCount is the number of features filed under a category.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts returns the entries of a category filter sidebar: the
// models.FilterAll total first, then each category in order of first
// appearance in collection.
func CategoryCounts(collection []*models.FeatureRequest) []CategoryCount {
	counts := []CategoryCount{{Category: models.FilterAll, Count: len(collection)}}
	index := make(map[string]int)
	for _, f := range collection {
		i, ok := index[f.Category]
		if !ok {
			i = len(counts)
			index[f.Category] = i
			counts = append(counts, CategoryCount{Category: f.Category})
		}
		counts[i].Count++
	}
	return counts
}
