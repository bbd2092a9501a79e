package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
)

const (
	defaultUploadWorkers = 4
	defaultMaxFileBytes  = 10 << 20
)

type UploadOptions struct {
	Workers      int
	MaxFileBytes int64
}

type UploadUseCase struct {
	customers ports.CustomerRegistry
	storage   ports.ObjectStorage
	queue     ports.UploadQueue
	events    ports.EventPublisher
	inspector ports.FileInspector
	logger    *slog.Logger
	opts      UploadOptions
	now       func() time.Time
}

func NewUploadUseCase(
	customers ports.CustomerRegistry,
	storage ports.ObjectStorage,
	queue ports.UploadQueue,
	events ports.EventPublisher,
	inspector ports.FileInspector,
	logger *slog.Logger,
	opts UploadOptions,
) *UploadUseCase {
	if opts.Workers <= 0 {
		opts.Workers = defaultUploadWorkers
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = defaultMaxFileBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadUseCase{
		customers: customers,
		storage:   storage,
		queue:     queue,
		events:    events,
		inspector: inspector,
		logger:    logger,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates the customer, stores every file independently and queues the
// stored ones. A batch in which no file could be stored is still reported as
// a result with itemized outcomes.
func (uc *UploadUseCase) Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.SubmissionResult, error) {
	given, family, role := strings.TrimSpace(req.GivenName), strings.TrimSpace(req.FamilyName), strings.TrimSpace(req.RoleLabel)
	if given == "" || family == "" || role == "" {
		return nil, domain.InvalidInput("submit upload", "given name, family name and role are required")
	}
	if len(req.Files) == 0 {
		return nil, domain.InvalidInput("submit upload", "at least one file is required")
	}

	customerID, roleID, err := uc.createCustomer(ctx, "submit upload", given, family, role)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	outcomes, refs := uc.storeAll(ctx, customerID, req.Files)

	entries := make([]domain.UploadQueueEntry, 0, len(refs))
	stored := make([]domain.ObjectRef, 0, len(refs))
	for i, ref := range refs {
		if ref == nil {
			continue
		}
		stored = append(stored, *ref)
		entries = append(entries, domain.UploadQueueEntry{
			CustomerID:   customerID,
			RoleID:       roleID,
			StoragePath:  ref.Path,
			FileURL:      uc.storage.PublicURL(*ref),
			OriginalName: req.Files[i].Filename,
			Status:       domain.QueueStatusPending,
			BatchID:      batchID,
		})
	}

	if len(entries) > 0 {
		if err := uc.queue.Enqueue(ctx, entries); err != nil {
			uc.discard(ctx, stored)
			return nil, fmt.Errorf("enqueue uploads: %w", err)
		}
		uc.publish(ctx, domain.UploadQueuedEvent{
			BatchID:    batchID,
			CustomerID: customerID,
			RoleLabel:  role,
			FileCount:  len(entries),
			QueuedAt:   uc.now(),
		})
	}

	result := &domain.SubmissionResult{
		BatchID:       batchID,
		CustomerID:    customerID,
		RoleID:        roleID,
		AcceptedCount: len(entries),
		Outcomes:      outcomes,
		Message:       fmt.Sprintf("%d Datei(en) erfolgreich hochgeladen", len(entries)),
	}
	for _, o := range outcomes {
		if !o.Stored() {
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %s", o.Filename, o.Error))
		}
	}
	uc.logger.Info("upload batch submitted",
		"batch_id", batchID,
		"customer_id", customerID,
		"accepted", result.AcceptedCount,
		"failed", len(result.Failures),
	)
	return result, nil
}

// InitUpload is the first step of the direct upload flow: the client stores
// files itself under <customerId>/ and calls FinalizeUpload afterwards.
func (uc *UploadUseCase) InitUpload(ctx context.Context, req domain.InitUploadRequest) (*domain.InitUploadResult, error) {
	given, family, role := strings.TrimSpace(req.GivenName), strings.TrimSpace(req.FamilyName), strings.TrimSpace(req.RoleLabel)
	if given == "" || family == "" || role == "" {
		return nil, domain.InvalidInput("init upload", "given name, family name and role are required")
	}
	customerID, roleID, err := uc.createCustomer(ctx, "init upload", given, family, role)
	if err != nil {
		return nil, err
	}
	return &domain.InitUploadResult{
		CustomerID: customerID,
		RoleID:     roleID,
		BatchID:    uuid.NewString(),
	}, nil
}

func (uc *UploadUseCase) FinalizeUpload(ctx context.Context, req domain.FinalizeUploadRequest) (int, error) {
	if req.CustomerID == "" || req.RoleID == "" || req.BatchID == "" {
		return 0, domain.InvalidInput("finalize upload", "customer id, role id and batch id are required")
	}
	if len(req.Files) == 0 {
		return 0, domain.InvalidInput("finalize upload", "at least one file is required")
	}

	prefix := req.CustomerID + "/"
	entries := make([]domain.UploadQueueEntry, 0, len(req.Files))
	for _, f := range req.Files {
		path := strings.TrimPrefix(strings.TrimSpace(f.Path), "/")
		if !strings.HasPrefix(path, prefix) || strings.Contains(path, "..") {
			return 0, domain.InvalidInput("finalize upload", fmt.Sprintf("path %q is outside the customer folder", f.Path))
		}
		fileURL := f.PublicURL
		if fileURL == "" {
			fileURL = uc.storage.PublicURL(domain.ObjectRef{Bucket: uc.storage.Bucket(), Path: path})
		}
		entries = append(entries, domain.UploadQueueEntry{
			CustomerID:   req.CustomerID,
			RoleID:       req.RoleID,
			StoragePath:  path,
			FileURL:      fileURL,
			OriginalName: f.OriginalName,
			Status:       domain.QueueStatusPending,
			BatchID:      req.BatchID,
		})
	}

	if err := uc.queue.Enqueue(ctx, entries); err != nil {
		return 0, fmt.Errorf("enqueue uploads: %w", err)
	}
	uc.publish(ctx, domain.UploadQueuedEvent{
		BatchID:    req.BatchID,
		CustomerID: req.CustomerID,
		FileCount:  len(entries),
		QueuedAt:   uc.now(),
	})
	return len(entries), nil
}

func (uc *UploadUseCase) createCustomer(ctx context.Context, operation, given, family, role string) (string, string, error) {
	roleID, err := uc.customers.RoleIDByLabel(ctx, role)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return "", "", domain.InvalidInput(operation, fmt.Sprintf("unknown role %q", role))
		}
		return "", "", fmt.Errorf("resolve role: %w", err)
	}
	customerID, err := uc.customers.CreateCustomer(ctx, given+" "+family, roleID)
	if err != nil {
		return "", "", fmt.Errorf("create customer: %w", err)
	}
	return customerID, roleID, nil
}

func (uc *UploadUseCase) storeAll(ctx context.Context, customerID string, files []domain.UploadFile) ([]domain.FileOutcome, []*domain.ObjectRef) {
	outcomes := make([]domain.FileOutcome, len(files))
	refs := make([]*domain.ObjectRef, len(files))

	var g errgroup.Group
	g.SetLimit(uc.opts.Workers)
	for i := range files {
		g.Go(func() error {
			outcomes[i], refs[i] = uc.storeOne(ctx, customerID, files[i])
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, refs
}

func (uc *UploadUseCase) storeOne(ctx context.Context, customerID string, file domain.UploadFile) (domain.FileOutcome, *domain.ObjectRef) {
	outcome := domain.FileOutcome{Filename: file.Filename}
	fail := func(msg string) (domain.FileOutcome, *domain.ObjectRef) {
		outcome.Error = msg
		return outcome, nil
	}

	if file.Size > uc.opts.MaxFileBytes {
		return fail(fmt.Sprintf("file exceeds %d MB", uc.opts.MaxFileBytes>>20))
	}
	if file.Open == nil {
		return fail("file has no content")
	}
	body, err := file.Open()
	if err != nil {
		return fail("read file: " + err.Error())
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, uc.opts.MaxFileBytes+1))
	if err != nil {
		return fail("read file: " + err.Error())
	}
	if int64(len(data)) > uc.opts.MaxFileBytes {
		return fail(fmt.Sprintf("file exceeds %d MB", uc.opts.MaxFileBytes>>20))
	}

	inspected, err := uc.inspector.Inspect(file.Filename, data)
	if err != nil {
		return fail(err.Error())
	}
	outcome.ContentType = inspected.ContentType

	path := fmt.Sprintf("%s/%s%s", customerID, uuid.NewString(), inspected.Extension)
	ref, err := uc.storage.Save(ctx, path, inspected.ContentType, bytes.NewReader(data))
	if err != nil {
		uc.logger.Warn("store upload failed", "filename", file.Filename, "error", err)
		return fail("store file: " + err.Error())
	}
	outcome.ObjectRef = ref.String()
	return outcome, &ref
}

func (uc *UploadUseCase) discard(ctx context.Context, refs []domain.ObjectRef) {
	for _, ref := range refs {
		if err := uc.storage.Delete(ctx, ref); err != nil {
			uc.logger.Warn("discard stored upload failed", "object", ref.String(), "error", err)
		}
	}
}

func (uc *UploadUseCase) publish(ctx context.Context, event domain.UploadQueuedEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishUploadQueued(ctx, event); err != nil {
		uc.logger.Warn("publish upload event failed", "batch_id", event.BatchID, "error", err)
	}
}
