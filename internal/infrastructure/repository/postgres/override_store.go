package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
)

type OverrideStore struct {
	db    *sql.DB
	guard *resilience.Guard
}

func NewOverrideStore(db *sql.DB, guard *resilience.Guard) *OverrideStore {
	return &OverrideStore{db: db, guard: guard}
}

func (s *OverrideStore) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025031701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS dashboard_overrides (
	kind TEXT NOT NULL,
	group_key TEXT NOT NULL,
	set_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, group_key)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (s *OverrideStore) Load(ctx context.Context) ([]domain.OverrideRecord, error) {
	var out []domain.OverrideRecord
	err := guarded(ctx, s.guard, "postgres.overrides_load", func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
SELECT kind, group_key, set_at
FROM dashboard_overrides
ORDER BY kind, group_key
`)
		if err != nil {
			return fmt.Errorf("query overrides: %w", err)
		}
		defer rows.Close()

		out = make([]domain.OverrideRecord, 0)
		for rows.Next() {
			var rec domain.OverrideRecord
			var kind string
			if err := rows.Scan(&kind, &rec.GroupKey, &rec.SetAt); err != nil {
				return fmt.Errorf("scan override: %w", err)
			}
			rec.Kind = domain.OverrideKind(kind)
			out = append(out, rec)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate overrides: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *OverrideStore) Put(ctx context.Context, rec domain.OverrideRecord) error {
	return guarded(ctx, s.guard, "postgres.overrides_put", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO dashboard_overrides (kind, group_key, set_at)
VALUES ($1, $2, $3)
ON CONFLICT (kind, group_key) DO UPDATE SET set_at = EXCLUDED.set_at
`, string(rec.Kind), rec.GroupKey, rec.SetAt)
		if err != nil {
			return fmt.Errorf("upsert override: %w", err)
		}
		return nil
	})
}

func (s *OverrideStore) Remove(ctx context.Context, kind domain.OverrideKind, groupKey string) error {
	return guarded(ctx, s.guard, "postgres.overrides_remove", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM dashboard_overrides WHERE kind = $1 AND group_key = $2`, string(kind), groupKey)
		if err != nil {
			return fmt.Errorf("delete override: %w", err)
		}
		return nil
	})
}
