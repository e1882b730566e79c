// Package browse derives the Home screen's series listing. Everything
// here is a pure function of the fetched series list and the current
// search text, level filter and sort key.
package browse

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cypheruni/learn/internal/models"
)

// SortKey selects the ordering of the browse listing
type SortKey string

const (
	// SortPopularity orders by videoCount, most videos first
	SortPopularity SortKey = "popularity"
	// SortAlphabetical orders by name ascending, locale-aware
	SortAlphabetical SortKey = "alphabetical"
	// SortDuration orders by the totalDuration string descending.
	// Durations are free text ("2h 15m"), so this is a plain string
	// comparison, not a parsed one.
	SortDuration SortKey = "duration"
)

// LevelAll disables the level filter
const LevelAll = "all"

// Derive filters and sorts series for display. The input slice is never
// mutated.
func Derive(series []models.Series, search, level string, sortBy SortKey) []models.Series {
	query := strings.ToLower(search)

	filtered := make([]models.Series, 0, len(series))
	for _, s := range series {
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Name), query) &&
			!strings.Contains(strings.ToLower(s.Description), query) {
			continue
		}
		if level != "" && !strings.EqualFold(level, LevelAll) && !strings.EqualFold(s.Level, level) {
			continue
		}
		filtered = append(filtered, s)
	}

	switch sortBy {
	case SortPopularity:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].VideoCount > filtered[j].VideoCount
		})
	case SortAlphabetical:
		coll := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(filtered, func(i, j int) bool {
			return coll.CompareString(filtered[i].Name, filtered[j].Name) < 0
		})
	case SortDuration:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].TotalDuration > filtered[j].TotalDuration
		})
	}

	return filtered
}
