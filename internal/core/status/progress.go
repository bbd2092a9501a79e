package status

import (
	"math"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Base category weights. Only categories with a non-zero total take part and
// their weights are rescaled to sum to one.
const (
	RequiredWeight = 0.60
	MinimumWeight  = 0.25
	DeepWeight     = 0.15
)

type category struct {
	satisfied float64
	total     int
	weight    float64
}

// ComputeProgress returns the weighted completion of a group in [0,100]. The
// minimum category uses the larger of the satisfied count and the partial
// credit.
func ComputeProgress(g domain.GroupSummary) int {
	categories := []category{
		{satisfied: float64(g.RequiredSatisfied), total: g.RequiredTotal, weight: RequiredWeight},
		{satisfied: math.Max(float64(g.MinimumSatisfied), g.MinimumCredit), total: g.MinimumTotal, weight: MinimumWeight},
		{satisfied: float64(g.DeepPassed), total: g.DeepTotal, weight: DeepWeight},
	}

	var weightSum float64
	for _, c := range categories {
		if c.total > 0 {
			weightSum += c.weight
		}
	}
	if weightSum == 0 {
		weightSum = 1
	}

	var score float64
	for _, c := range categories {
		if c.total <= 0 {
			continue
		}
		ratio := c.satisfied / float64(c.total)
		score += math.Max(0, math.Min(1, ratio)) * (c.weight / weightSum)
	}
	return roundHalfUp(100 * score)
}

func roundHalfUp(x float64) int {
	n := int(math.Floor(x + 0.5))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}
