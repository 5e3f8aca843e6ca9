package product

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
)

type Repository interface {
	// FindAllByID returns only the products that exist, in one batched call.
	FindAllByID(ctx context.Context, ids []string) ([]*Product, error)
	// UpdateQuantity overwrites stock with absolute values, applied in slice order.
	UpdateQuantity(ctx context.Context, levels []inventory.Level) error
}
