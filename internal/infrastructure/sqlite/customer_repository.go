package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Save inserts the customer or overwrites the one with the same id.
func (r *CustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	const q = `
		INSERT INTO customers (id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			updated_at = excluded.updated_at`

	created, updated := c.CreatedAt, c.UpdatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	if _, err := r.db.conn(ctx).ExecContext(ctx, q,
		c.ID, c.Name, c.Email, formatTime(created), formatTime(updated),
	); err != nil {
		return fmt.Errorf("sqlite: save customer %q: %w", c.ID, err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT id, name, email, created_at, updated_at FROM customers WHERE id = ?`

	var (
		c                domain.Customer
		created, updated string
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find customer %q: %w", id, err)
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}
