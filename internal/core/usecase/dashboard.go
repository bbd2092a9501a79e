package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
	"github.com/kirillkom/document-status-dashboard/internal/core/status"
)

type DashboardUseCase struct {
	source     ports.StatusSource
	overrides  ports.OverrideReader
	reconciler *status.Reconciler
	now        func() time.Time
}

func NewDashboardUseCase(
	source ports.StatusSource,
	overrides ports.OverrideReader,
	reconciler *status.Reconciler,
) *DashboardUseCase {
	return &DashboardUseCase{
		source:     source,
		overrides:  overrides,
		reconciler: reconciler,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *DashboardUseCase) Rows(ctx context.Context) ([]domain.StatusRow, error) {
	raws, err := uc.source.FetchStatusRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch status rows: %w", err)
	}
	return status.NormalizeAll(raws), nil
}

func (uc *DashboardUseCase) Overview(ctx context.Context, query domain.OverviewQuery) ([]domain.GroupSummary, error) {
	if query.Sort != "" && !query.Sort.Valid() {
		return nil, domain.InvalidInput("dashboard overview", fmt.Sprintf("unknown sort %q", query.Sort))
	}
	if query.Lifecycle != "" && !query.Lifecycle.Valid() {
		return nil, domain.InvalidInput("dashboard overview", fmt.Sprintf("unknown lifecycle status %q", query.Lifecycle))
	}

	rows, err := uc.Rows(ctx)
	if err != nil {
		return nil, err
	}
	groups := status.ApplyOverrides(status.Aggregate(rows), uc.overrides.Current())
	return status.Overview(groups, query), nil
}

func (uc *DashboardUseCase) Detail(ctx context.Context, customerID, roleLabel string) (*domain.GroupDetail, error) {
	if customerID == "" {
		return nil, domain.InvalidInput("dashboard detail", "customer id is required")
	}
	rows, err := uc.Rows(ctx)
	if err != nil {
		return nil, err
	}

	key := domain.GroupKey(customerID, roleLabel)
	detail, ok := status.BuildDetail(rows, key, uc.overrides.Current(), uc.reconciler)
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "dashboard detail", fmt.Errorf("group %q", key))
	}
	return &detail, nil
}

// Snapshot tallies the current state of all groups, overrides included. The
// overrides are re-read first since another process may have changed them.
func (uc *DashboardUseCase) Snapshot(ctx context.Context) (domain.LifecycleCounts, error) {
	if err := uc.overrides.Reload(ctx); err != nil {
		return domain.LifecycleCounts{}, err
	}
	rows, err := uc.Rows(ctx)
	if err != nil {
		return domain.LifecycleCounts{}, err
	}
	groups := status.ApplyOverrides(status.Aggregate(rows), uc.overrides.Current())
	return status.Tally(rows, groups, uc.reconciler, uc.now()), nil
}
