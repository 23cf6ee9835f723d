package stats

import (
	"sort"

	"github.com/verte-zerg/stepcost/internal/model"
)

// TopKeysByFrequency returns the n most pressed keys, ties broken by name.
func TopKeysByFrequency(aggs []model.KeyAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	byPresses := append([]model.KeyAggregate(nil), aggs...)
	sort.Slice(byPresses, func(i, j int) bool {
		a, b := byPresses[i], byPresses[j]
		if a.Presses != b.Presses {
			return a.Presses > b.Presses
		}
		return a.Key < b.Key
	})
	keys := make([]string, 0, min(n, len(byPresses)))
	for _, agg := range byPresses[:cap(keys)] {
		keys = append(keys, agg.Key)
	}
	return keys
}
