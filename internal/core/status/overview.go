package status

import (
	"sort"
	"strings"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

var lifecycleOrder = map[domain.LifecycleStatus]int{
	domain.LifecycleFailed:            0,
	domain.LifecycleInProgress:        1,
	domain.LifecycleWaitingForUpload:  2,
	domain.LifecycleCompleted:         3,
	domain.LifecycleManuallyCompleted: 4,
}

// Overview filters and orders overlaid group summaries. The input slice is
// not modified. Ties are broken by group key.
func Overview(groups []domain.GroupSummary, q domain.OverviewQuery) []domain.GroupSummary {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.GroupSummary, 0, len(groups))
	for _, g := range groups {
		if g.Hidden && !q.IncludeHidden {
			continue
		}
		if q.RoleLabel != "" && g.RoleLabel != q.RoleLabel {
			continue
		}
		if q.Lifecycle != "" && g.Lifecycle != q.Lifecycle {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(g.CustomerName), search) &&
			!strings.Contains(strings.ToLower(g.RoleLabel), search) {
			continue
		}
		out = append(out, g)
	}

	less := lessFor(q.Sort)
	sort.SliceStable(out, func(i, j int) bool {
		if c := less(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func lessFor(s domain.OverviewSort) func(a, b domain.GroupSummary) int {
	switch s {
	case domain.SortByProgress:
		return func(a, b domain.GroupSummary) int {
			return b.ProgressPercent - a.ProgressPercent
		}
	case domain.SortByActivity:
		return func(a, b domain.GroupSummary) int {
			switch {
			case a.LastActivityAt == nil && b.LastActivityAt == nil:
				return 0
			case a.LastActivityAt == nil:
				return 1
			case b.LastActivityAt == nil:
				return -1
			}
			return b.LastActivityAt.Compare(*a.LastActivityAt)
		}
	case domain.SortByStatus:
		return func(a, b domain.GroupSummary) int {
			return lifecycleOrder[a.Lifecycle] - lifecycleOrder[b.Lifecycle]
		}
	default:
		return func(a, b domain.GroupSummary) int {
			if c := strings.Compare(strings.ToLower(a.CustomerName), strings.ToLower(b.CustomerName)); c != 0 {
				return c
			}
			return strings.Compare(a.RoleLabel, b.RoleLabel)
		}
	}
}
