package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
)

type overrideKey struct {
	kind     domain.OverrideKind
	groupKey string
}

// OverrideUseCase keeps the override records in memory and writes every
// mutation through to the store before it becomes visible.
type OverrideUseCase struct {
	store ports.OverrideStore
	now   func() time.Time

	mu       sync.RWMutex
	records  map[overrideKey]domain.OverrideRecord
	snapshot domain.Overrides
}

func NewOverrideUseCase(ctx context.Context, store ports.OverrideStore) (*OverrideUseCase, error) {
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	uc := &OverrideUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	uc.replaceLocked(loaded)
	return uc, nil
}

// Reload replaces the in-memory records with the store contents. On error the
// previous snapshot stays in place.
func (uc *OverrideUseCase) Reload(ctx context.Context) error {
	loaded, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload overrides: %w", err)
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.replaceLocked(loaded)
	return nil
}

func (uc *OverrideUseCase) replaceLocked(loaded []domain.OverrideRecord) {
	uc.records = make(map[overrideKey]domain.OverrideRecord, len(loaded))
	for _, rec := range loaded {
		if !rec.Kind.Valid() || rec.GroupKey == "" {
			continue
		}
		uc.records[overrideKey{kind: rec.Kind, groupKey: rec.GroupKey}] = rec
	}
	uc.rebuildLocked()
}

func (uc *OverrideUseCase) Current() domain.Overrides {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.snapshot
}

func (uc *OverrideUseCase) List(_ context.Context) ([]domain.OverrideRecord, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.sortedLocked(), nil
}

// Set is idempotent; setting an existing record refreshes its timestamp.
func (uc *OverrideUseCase) Set(ctx context.Context, kind domain.OverrideKind, groupKey string) (domain.OverrideRecord, error) {
	if err := validateOverride("set override", kind, groupKey); err != nil {
		return domain.OverrideRecord{}, err
	}
	rec := domain.OverrideRecord{Kind: kind, GroupKey: groupKey, SetAt: uc.now()}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.store.Put(ctx, rec); err != nil {
		return domain.OverrideRecord{}, fmt.Errorf("persist override: %w", err)
	}
	uc.records[overrideKey{kind: kind, groupKey: groupKey}] = rec
	uc.rebuildLocked()
	return rec, nil
}

// Delete removes a record; deleting a missing record is a no-op.
func (uc *OverrideUseCase) Delete(ctx context.Context, kind domain.OverrideKind, groupKey string) error {
	if err := validateOverride("delete override", kind, groupKey); err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	key := overrideKey{kind: kind, groupKey: groupKey}
	if _, ok := uc.records[key]; !ok {
		return nil
	}
	if err := uc.store.Remove(ctx, kind, groupKey); err != nil {
		return fmt.Errorf("remove override: %w", err)
	}
	delete(uc.records, key)
	uc.rebuildLocked()
	return nil
}

func (uc *OverrideUseCase) rebuildLocked() {
	uc.snapshot = domain.NewOverrides(uc.sortedLocked())
}

func (uc *OverrideUseCase) sortedLocked() []domain.OverrideRecord {
	out := make([]domain.OverrideRecord, 0, len(uc.records))
	for _, rec := range uc.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].GroupKey < out[j].GroupKey
	})
	return out
}

func validateOverride(operation string, kind domain.OverrideKind, groupKey string) error {
	if !kind.Valid() {
		return domain.InvalidInput(operation, fmt.Sprintf("unknown override kind %q", kind))
	}
	if strings.TrimSpace(groupKey) == "" {
		return domain.InvalidInput(operation, "group key is required")
	}
	return nil
}
