package postgres

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	db  *DB
	ids id.Generator
}

// NewOrderRepository defaults to UUID identities when ids is nil.
func NewOrderRepository(db *DB, ids id.Generator) *OrderRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &OrderRepository{db: db, ids: ids}
}

// Create writes the order and its lines in one transaction, joining the caller's if present.
func (r *OrderRepository) Create(ctx context.Context, params domain.CreateParams) (*domain.Order, error) {
	if params.Customer == nil {
		return nil, errors.New("failed to create order: customer is required")
	}

	orderID := r.ids.NewID()
	lineIDs := make([]string, len(params.Products))
	for i := range lineIDs {
		lineIDs[i] = r.ids.NewID()
	}
	o, err := domain.New(orderID, params.Customer.ID, params.Products, lineIDs)
	if err != nil {
		return nil, err
	}

	err = r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		if _, err := q.Exec(ctx,
			"INSERT INTO orders (id, customer_id, created_at, updated_at) VALUES ($1, $2, $3, $4)",
			o.ID, o.CustomerID, o.CreatedAt, o.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		if len(o.Products) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for i, p := range o.Products {
			batch.Queue(`
				INSERT INTO order_products (id, order_id, product_id, position, quantity, price, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID, o.ID, p.ProductID, i, p.Quantity, p.Price, p.CreatedAt,
			)
		}
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to create order lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	q := r.db.conn(ctx)

	var o domain.Order
	err := q.QueryRow(ctx,
		"SELECT id, customer_id, created_at, updated_at FROM orders WHERE id = $1", id,
	).Scan(&o.ID, &o.CustomerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order with id %s: %w", id, err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, created_at
		FROM order_products WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines of order %s: %w", id, err)
	}
	o.Products, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderProduct, error) {
		var p domain.OrderProduct
		err := row.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.Quantity, &p.Price, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan lines of order %s: %w", id, err)
	}
	return &o, nil
}
