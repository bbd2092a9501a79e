package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
)

const statusViewQuery = `SELECT row_to_json(v)::text FROM dashboard_dokumentenstatus v`

// StatusSource reads the status view row by row as JSON so the column set is
// passed through unchanged.
type StatusSource struct {
	db    *sql.DB
	guard *resilience.Guard
}

func NewStatusSource(db *sql.DB, guard *resilience.Guard) *StatusSource {
	return &StatusSource{db: db, guard: guard}
}

func (s *StatusSource) FetchStatusRows(ctx context.Context) ([]domain.RawRow, error) {
	var out []domain.RawRow
	err := guarded(ctx, s.guard, "postgres.status_rows", func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, statusViewQuery)
		if err != nil {
			return fmt.Errorf("query status view: %w", err)
		}
		defer rows.Close()

		out = make([]domain.RawRow, 0)
		for rows.Next() {
			var payload []byte
			if err := rows.Scan(&payload); err != nil {
				return fmt.Errorf("scan status row: %w", err)
			}
			raw, err := decodeRawRow(payload)
			if err != nil {
				return err
			}
			out = append(out, raw)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate status rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRawRow(payload []byte) (domain.RawRow, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw domain.RawRow
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode status row: %w", err)
	}
	return raw, nil
}
