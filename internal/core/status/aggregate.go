package status

import (
	"math"
	"strings"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Aggregate groups rows by (customer, role) in first-seen order and derives
// progress and lifecycle for every group.
func Aggregate(rows []domain.StatusRow) []domain.GroupSummary {
	index := make(map[string]int)
	groups := make([]domain.GroupSummary, 0)
	for _, row := range rows {
		key := row.GroupKey()
		i, ok := index[key]
		if !ok {
			groups = append(groups, domain.GroupSummary{
				Key:        key,
				CustomerID: row.CustomerID,
				RoleLabel:  row.RoleLabel,
			})
			i = len(groups) - 1
			index[key] = i
		}
		accumulate(&groups[i], row)
	}
	for i := range groups {
		groups[i].ProgressPercent = ComputeProgress(groups[i])
		groups[i].Lifecycle = Classify(groups[i], groups[i].ProgressPercent)
	}
	return groups
}

func accumulate(g *domain.GroupSummary, row domain.StatusRow) {
	if g.CustomerName == "" {
		g.CustomerName = row.CustomerName
	}
	if row.IsRequired {
		g.RequiredTotal++
		if row.IsPresent {
			g.RequiredSatisfied++
		}
	}
	if row.MinimumCount != nil {
		g.MinimumTotal++
		if row.MinimumSatisfied != nil && *row.MinimumSatisfied {
			g.MinimumSatisfied++
			g.MinimumCredit++
		} else {
			g.MinimumCredit += partialCredit(row)
		}
	}
	if row.RequiresDeepVerification {
		g.DeepTotal++
		switch strings.ToLower(row.CaseStatus) {
		case "passed":
			g.DeepPassed++
		case "failed":
			g.DeepFailed++
		}
	}
	if row.FileReference != "" {
		g.HasAnyUpload = true
	}
	if row.LastUpdatedAt != nil && (g.LastActivityAt == nil || row.LastUpdatedAt.After(*g.LastActivityAt)) {
		at := *row.LastUpdatedAt
		g.LastActivityAt = &at
	}
}

// partialCredit scores a row whose minimum is not reported as satisfied. The
// backend flag wins over the counts, so the credit stays below one even when
// present >= minimum.
func partialCredit(row domain.StatusRow) float64 {
	if row.MinimumCount == nil || *row.MinimumCount <= 0 || row.PresentCount == nil || *row.PresentCount <= 0 {
		return 0
	}
	minimum := float64(*row.MinimumCount)
	return math.Min(float64(*row.PresentCount)/minimum, (minimum-1)/minimum)
}
