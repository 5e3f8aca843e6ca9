package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Save inserts the customer or overwrites the one with the same id.
func (r *CustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at`

	created, updated := c.CreatedAt, c.UpdatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if updated.IsZero() {
		updated = created
	}
	if _, err := r.db.conn(ctx).Exec(ctx, query, c.ID, c.Name, c.Email, created, updated); err != nil {
		return fmt.Errorf("failed to save customer %s: %w", c.ID, err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	query := "SELECT id, name, email, created_at, updated_at FROM customers WHERE id = $1"

	err := r.db.conn(ctx).QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve customer with id %s: %w", id, err)
	}
	return &c, nil
}
