package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
)

type CustomerRegistry struct {
	db    *sql.DB
	guard *resilience.Guard
}

func NewCustomerRegistry(db *sql.DB, guard *resilience.Guard) *CustomerRegistry {
	return &CustomerRegistry{db: db, guard: guard}
}

func (r *CustomerRegistry) RoleIDByLabel(ctx context.Context, label string) (string, error) {
	var id string
	err := guarded(ctx, r.guard, "postgres.role_by_label", func(ctx context.Context) error {
		err := r.db.QueryRowContext(ctx, `SELECT id::text FROM rollen WHERE rolle = $1 LIMIT 1`, label).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrNotFound, "role by label", fmt.Errorf("role %q", label))
		}
		if err != nil {
			return fmt.Errorf("query role: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CustomerRegistry) CreateCustomer(ctx context.Context, name, roleID string) (string, error) {
	var id string
	err := guarded(ctx, r.guard, "postgres.create_customer", func(ctx context.Context) error {
		err := r.db.QueryRowContext(ctx, `
INSERT INTO kunden (name, rolle_id)
VALUES ($1, $2)
RETURNING id::text
`, name, roleID).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
