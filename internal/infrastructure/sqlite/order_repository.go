package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
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
		return nil, errors.New("sqlite: create order: customer is required")
	}

	lineIDs := make([]string, len(params.Products))
	orderID := r.ids.NewID()
	for i := range lineIDs {
		lineIDs[i] = r.ids.NewID()
	}
	o, err := domain.New(orderID, params.Customer.ID, params.Products, lineIDs)
	if err != nil {
		return nil, err
	}

	const (
		insertOrder = `INSERT INTO orders (id, customer_id, created_at, updated_at) VALUES (?, ?, ?, ?)`
		insertLine  = `
			INSERT INTO order_products (id, order_id, product_id, position, quantity, price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	)

	err = r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		if _, err := q.ExecContext(ctx, insertOrder,
			o.ID, o.CustomerID, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
		); err != nil {
			if isPrimaryKeyViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
		}
		for i, p := range o.Products {
			if _, err := q.ExecContext(ctx, insertLine,
				p.ID, o.ID, p.ProductID, i, p.Quantity, p.Price, formatTime(p.CreatedAt),
			); err != nil {
				return fmt.Errorf("sqlite: insert order line %q: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const (
		selectOrder = `SELECT id, customer_id, created_at, updated_at FROM orders WHERE id = ?`
		selectLines = `
			SELECT id, order_id, product_id, quantity, price, created_at
			FROM order_products WHERE order_id = ? ORDER BY position`
	)

	q := r.db.conn(ctx)

	var (
		o                domain.Order
		created, updated string
	)
	err := q.QueryRowContext(ctx, selectOrder, id).Scan(&o.ID, &o.CustomerID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, selectLines, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order lines %q: %w", id, err)
	}
	defer rows.Close()

	o.Products = []domain.OrderProduct{}
	for rows.Next() {
		var (
			p       domain.OrderProduct
			created string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.Quantity, &p.Price, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan order line: %w", err)
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		o.Products = append(o.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate order lines: %w", err)
	}
	return &o, nil
}
