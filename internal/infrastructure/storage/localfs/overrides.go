package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// OverrideFile keeps override records in one JSON document, rewritten
// atomically on every mutation.
type OverrideFile struct {
	path string
	mu   sync.Mutex
}

func NewOverrideFile(path string) (*OverrideFile, error) {
	if path == "" {
		path = "./data/overrides.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create override dir: %w", err)
	}
	return &OverrideFile{path: path}, nil
}

func (o *OverrideFile) Load(_ context.Context) ([]domain.OverrideRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.read()
}

func (o *OverrideFile) Put(_ context.Context, record domain.OverrideRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	records, err := o.read()
	if err != nil {
		return err
	}
	replaced := false
	for i := range records {
		if records[i].Kind == record.Kind && records[i].GroupKey == record.GroupKey {
			records[i] = record
			replaced = true
		}
	}
	if !replaced {
		records = append(records, record)
	}
	return o.write(records)
}

func (o *OverrideFile) Remove(_ context.Context, kind domain.OverrideKind, groupKey string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	records, err := o.read()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.Kind == kind && rec.GroupKey == groupKey {
			continue
		}
		kept = append(kept, rec)
	}
	return o.write(kept)
}

func (o *OverrideFile) read() ([]domain.OverrideRecord, error) {
	data, err := os.ReadFile(o.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.OverrideRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	var records []domain.OverrideRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return records, nil
}

func (o *OverrideFile) write(records []domain.OverrideRecord) error {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Kind != records[j].Kind {
			return records[i].Kind < records[j].Kind
		}
		return records[i].GroupKey < records[j].GroupKey
	})
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(o.path), ".overrides-*.json")
	if err != nil {
		return fmt.Errorf("create temp overrides: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write overrides: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close overrides: %w", err)
	}
	if err := os.Rename(tmp.Name(), o.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace overrides: %w", err)
	}
	return nil
}
