package stats

import (
	"sort"

	"github.com/verte-zerg/stepcost/internal/model"
)

// SelectCostlyKeys selects the keys with the highest average press cost.
// Keys pressed fewer than minPresses times are ignored.
func SelectCostlyKeys(aggs []model.KeyAggregate, top, minPresses int) map[string]struct{} {
	costly := map[string]struct{}{}
	candidates := make([]model.KeyAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Presses >= minPresses && agg.Presses > 0 {
			candidates = append(candidates, agg)
		}
	}
	if len(candidates) == 0 {
		return costly
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := AverageCost(candidates[i].Presses, candidates[i].CostSum)
		aj := AverageCost(candidates[j].Presses, candidates[j].CostSum)
		if ai == aj {
			return candidates[i].Key < candidates[j].Key
		}
		return ai > aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, c := range candidates[:top] {
		costly[c.Key] = struct{}{}
	}
	return costly
}
