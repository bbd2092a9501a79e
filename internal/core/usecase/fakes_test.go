package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

type statusSourceFake struct {
	rows  []domain.RawRow
	err   error
	calls int
}

func (f *statusSourceFake) FetchStatusRows(context.Context) ([]domain.RawRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type overrideStoreFake struct {
	mu      sync.Mutex
	records []domain.OverrideRecord
	loadErr error
	putErr  error
	puts    int
	removes int
}

func (f *overrideStoreFake) Load(context.Context) ([]domain.OverrideRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]domain.OverrideRecord(nil), f.records...), nil
}

func (f *overrideStoreFake) Put(_ context.Context, rec domain.OverrideRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	for i, existing := range f.records {
		if existing.Kind == rec.Kind && existing.GroupKey == rec.GroupKey {
			f.records[i] = rec
			return nil
		}
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *overrideStoreFake) Remove(_ context.Context, kind domain.OverrideKind, groupKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	kept := f.records[:0]
	for _, existing := range f.records {
		if existing.Kind != kind || existing.GroupKey != groupKey {
			kept = append(kept, existing)
		}
	}
	f.records = kept
	return nil
}

type customerRegistryFake struct {
	roles     map[string]string
	roleErr   error
	createErr error
	created   []string
}

func (f *customerRegistryFake) RoleIDByLabel(_ context.Context, label string) (string, error) {
	if f.roleErr != nil {
		return "", f.roleErr
	}
	id, ok := f.roles[label]
	if !ok {
		return "", domain.WrapError(domain.ErrNotFound, "role by label", errors.New(label))
	}
	return id, nil
}

func (f *customerRegistryFake) CreateCustomer(_ context.Context, name, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, name)
	return fmt.Sprintf("%d", 100+len(f.created)), nil
}

type uploadQueueFake struct {
	entries []domain.UploadQueueEntry
	err     error
}

func (f *uploadQueueFake) Enqueue(_ context.Context, entries []domain.UploadQueueEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entries...)
	return nil
}

type objectStorageFake struct {
	mu        sync.Mutex
	saved     map[string]string
	deleted   []string
	failNames map[string]bool
	signed    string
	signErr   error
	lastRef   domain.ObjectRef
	lastTTL   time.Duration
}

func newObjectStorageFake() *objectStorageFake {
	return &objectStorageFake{saved: make(map[string]string), failNames: make(map[string]bool)}
}

func (f *objectStorageFake) Bucket() string { return "upload" }

func (f *objectStorageFake) Save(_ context.Context, path, _ string, data io.Reader) (domain.ObjectRef, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNames[string(raw)] {
		return domain.ObjectRef{}, errors.New("storage unavailable")
	}
	f.saved[path] = string(raw)
	return domain.ObjectRef{Bucket: "upload", Path: path}, nil
}

func (f *objectStorageFake) Delete(_ context.Context, ref domain.ObjectRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref.Path)
	return nil
}

func (f *objectStorageFake) SignedURL(_ context.Context, ref domain.ObjectRef, ttl time.Duration) (string, error) {
	f.lastRef, f.lastTTL = ref, ttl
	return f.signed, f.signErr
}

func (f *objectStorageFake) PublicURL(ref domain.ObjectRef) string {
	return "https://files.example/" + ref.String()
}

type eventPublisherFake struct {
	events []domain.UploadQueuedEvent
	err    error
}

func (f *eventPublisherFake) PublishUploadQueued(_ context.Context, event domain.UploadQueuedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// inspectorFake accepts any content starting with "%PDF".
type inspectorFake struct{}

func (inspectorFake) Inspect(_ string, data []byte) (domain.InspectedFile, error) {
	if !strings.HasPrefix(string(data), "%PDF") {
		return domain.InspectedFile{}, errors.New("unsupported file type")
	}
	return domain.InspectedFile{ContentType: "application/pdf", Extension: ".pdf"}, nil
}

func memFile(name, content string) domain.UploadFile {
	return domain.UploadFile{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
