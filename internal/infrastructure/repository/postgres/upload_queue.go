package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
)

// UploadQueue writes upload_queue rows; all rows of one call commit together.
type UploadQueue struct {
	db    *sql.DB
	guard *resilience.Guard
}

func NewUploadQueue(db *sql.DB, guard *resilience.Guard) *UploadQueue {
	return &UploadQueue{db: db, guard: guard}
}

func (q *UploadQueue) Enqueue(ctx context.Context, entries []domain.UploadQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return guarded(ctx, q.guard, "postgres.upload_queue", func(ctx context.Context) error {
		tx, err := q.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin queue tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO upload_queue (kunde_id, rolle_id, storage_path, file_url, original_name, status, batch_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, e.CustomerID, e.RoleID, e.StoragePath, e.FileURL, e.OriginalName, e.Status, e.BatchID); err != nil {
				return fmt.Errorf("insert upload_queue row: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit queue tx: %w", err)
		}
		return nil
	})
}
