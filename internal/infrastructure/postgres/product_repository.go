package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Save inserts the product or overwrites the one with the same id.
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at`

	created, updated := p.CreatedAt, p.UpdatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if updated.IsZero() {
		updated = created
	}
	if _, err := r.db.conn(ctx).Exec(ctx, query, p.ID, p.Name, p.Price, p.Quantity, created, updated); err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := `
		SELECT id, name, price, quantity, created_at, updated_at
		FROM products
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)`

	rows, err := r.db.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Product, error) {
		var p domain.Product
		err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
		return &p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// UpdateQuantity applies every level or none of them.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, levels []inventory.Level) error {
	if len(levels) == 0 {
		return nil
	}

	query := "UPDATE products SET quantity = $1, updated_at = $2 WHERE id = $3"
	now := time.Now().UTC()

	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		for _, l := range levels {
			tag, err := r.db.conn(ctx).Exec(ctx, query, l.Quantity, now, l.ProductID)
			if err != nil {
				return fmt.Errorf("failed to update quantity of %s: %w", l.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("failed to update quantity of %s: %w", l.ProductID, domain.ErrNotFound)
			}
		}
		return nil
	})
}
