package ports

import (
	"context"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// DashboardService is the inbound read model over the document status view.
type DashboardService interface {
	Rows(ctx context.Context) ([]domain.StatusRow, error)
	Overview(ctx context.Context, query domain.OverviewQuery) ([]domain.GroupSummary, error)
	Detail(ctx context.Context, customerID, roleLabel string) (*domain.GroupDetail, error)
	Snapshot(ctx context.Context) (domain.LifecycleCounts, error)
}

// UploadService is the inbound contract for customer document submission.
type UploadService interface {
	Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.SubmissionResult, error)
	InitUpload(ctx context.Context, req domain.InitUploadRequest) (*domain.InitUploadResult, error)
	FinalizeUpload(ctx context.Context, req domain.FinalizeUploadRequest) (int, error)
}

// DownloadService resolves stored object references to short-lived URLs.
type DownloadService interface {
	DownloadURL(ctx context.Context, reference string) (string, error)
}

// OverrideService toggles the installation-local group overrides.
type OverrideService interface {
	List(ctx context.Context) ([]domain.OverrideRecord, error)
	Set(ctx context.Context, kind domain.OverrideKind, groupKey string) (domain.OverrideRecord, error)
	Delete(ctx context.Context, kind domain.OverrideKind, groupKey string) error
}

// OverrideReader exposes the current override snapshot to read models.
// Reload re-reads the store for processes that do not own the mutations.
type OverrideReader interface {
	Current() domain.Overrides
	Reload(ctx context.Context) error
}
