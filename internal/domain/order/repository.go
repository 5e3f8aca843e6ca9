package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

// CreateParams carries what the store needs to persist a new order.
type CreateParams struct {
	Customer *customer.Customer
	Products []Line
}

type Repository interface {
	// Create assigns identity to the order and its lines and persists them atomically.
	Create(ctx context.Context, params CreateParams) (*Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
}
