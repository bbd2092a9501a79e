package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// StatusSource returns raw rows of the document status view. It never
// normalizes.
type StatusSource interface {
	FetchStatusRows(ctx context.Context) ([]domain.RawRow, error)
}

// CustomerRegistry resolves roles and creates customers.
type CustomerRegistry interface {
	RoleIDByLabel(ctx context.Context, label string) (string, error)
	CreateCustomer(ctx context.Context, name, roleID string) (string, error)
}

// UploadQueue hands stored files to the backend processing pipeline.
type UploadQueue interface {
	Enqueue(ctx context.Context, entries []domain.UploadQueueEntry) error
}

// ObjectStorage stores uploaded customer files.
type ObjectStorage interface {
	Bucket() string
	Save(ctx context.Context, path, contentType string, data io.Reader) (domain.ObjectRef, error)
	Delete(ctx context.Context, ref domain.ObjectRef) error
	SignedURL(ctx context.Context, ref domain.ObjectRef, ttl time.Duration) (string, error)
	PublicURL(ref domain.ObjectRef) string
}

// OverrideStore persists override records.
type OverrideStore interface {
	Load(ctx context.Context) ([]domain.OverrideRecord, error)
	Put(ctx context.Context, record domain.OverrideRecord) error
	Remove(ctx context.Context, kind domain.OverrideKind, groupKey string) error
}

// EventPublisher announces queued upload batches.
type EventPublisher interface {
	PublishUploadQueued(ctx context.Context, event domain.UploadQueuedEvent) error
}

// EventSubscriber consumes queued upload batches.
type EventSubscriber interface {
	SubscribeUploadQueued(ctx context.Context, handler func(context.Context, domain.UploadQueuedEvent) error) error
}

// FileInspector checks an uploaded file and reports its sniffed type.
type FileInspector interface {
	Inspect(filename string, data []byte) (domain.InspectedFile, error)
}
