package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Save inserts the product or overwrites the one with the same id.
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	const q = `
		INSERT INTO products (id, name, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			quantity = excluded.quantity,
			updated_at = excluded.updated_at`

	created, updated := p.CreatedAt, p.UpdatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	if _, err := r.db.conn(ctx).ExecContext(ctx, q,
		p.ID, p.Name, p.Price, p.Quantity, formatTime(created), formatTime(updated),
	); err != nil {
		return fmt.Errorf("sqlite: save product %q: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT id, name, price, quantity, created_at, updated_at FROM products WHERE id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + `)`

	rows, err := r.db.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find products: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Product, len(ids))
	for rows.Next() {
		var (
			p                domain.Product
			created, updated string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &created, &updated); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate products: %w", err)
	}

	// Keep the caller's id order.
	out := make([]*domain.Product, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

// UpdateQuantity applies every level or none of them.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, levels []inventory.Level) error {
	if len(levels) == 0 {
		return nil
	}

	const q = `UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`
	now := formatTime(time.Now())

	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		for _, l := range levels {
			res, err := r.db.conn(ctx).ExecContext(ctx, q, l.Quantity, now, l.ProductID)
			if err != nil {
				return fmt.Errorf("sqlite: update quantity %q: %w", l.ProductID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("sqlite: update quantity %q: %w", l.ProductID, err)
			}
			if n == 0 {
				return fmt.Errorf("sqlite: update quantity %q: %w", l.ProductID, domain.ErrNotFound)
			}
		}
		return nil
	})
}
