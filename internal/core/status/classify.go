package status

import "github.com/kirillkom/document-status-dashboard/internal/core/domain"

// Classify derives the lifecycle from counters alone. Failure takes precedence
// over completion.
func Classify(g domain.GroupSummary, progress int) domain.LifecycleStatus {
	switch {
	case g.DeepFailed > 0:
		return domain.LifecycleFailed
	case progress == 100:
		return domain.LifecycleCompleted
	case g.HasAnyUpload:
		return domain.LifecycleInProgress
	default:
		return domain.LifecycleWaitingForUpload
	}
}

// ApplyOverrides returns a copy of groups with the hidden and manual-done
// overlays applied. A manual-done record beats every derived status.
func ApplyOverrides(groups []domain.GroupSummary, overrides domain.Overrides) []domain.GroupSummary {
	out := make([]domain.GroupSummary, len(groups))
	for i, g := range groups {
		out[i] = ApplyOverride(g, overrides)
	}
	return out
}

func ApplyOverride(g domain.GroupSummary, overrides domain.Overrides) domain.GroupSummary {
	g.Hidden = overrides.IsHidden(g.Key)
	g.ManuallyCompletedAt = nil
	if at, ok := overrides.ManualDoneAt(g.Key); ok {
		setAt := at
		g.ManuallyCompletedAt = &setAt
		g.Lifecycle = domain.LifecycleManuallyCompleted
	} else if g.Lifecycle == domain.LifecycleManuallyCompleted {
		g.Lifecycle = Classify(g, g.ProgressPercent)
	}
	return g
}
