package status

import (
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Tally counts groups per lifecycle and reconciliation outcome. A
// reconciliation with either side missing counts as pending.
func Tally(rows []domain.StatusRow, groups []domain.GroupSummary, reconciler *Reconciler, takenAt time.Time) domain.LifecycleCounts {
	counts := domain.LifecycleCounts{
		TakenAt: takenAt,
		Groups:  len(groups),
		Rows:    len(rows),
		ByState: make(map[domain.LifecycleStatus]int),
	}
	for _, g := range groups {
		counts.ByState[g.Lifecycle]++
	}

	byGroup := make(map[string][]domain.StatusRow, len(groups))
	for _, row := range rows {
		key := row.GroupKey()
		byGroup[key] = append(byGroup[key], row)
	}
	for _, g := range groups {
		rec := reconciler.Extract(byGroup[g.Key])
		switch {
		case !rec.Delta.Valid:
			counts.Pending++
		case rec.Passed:
			counts.Passed++
		default:
			counts.Failed++
		}
	}
	return counts
}
