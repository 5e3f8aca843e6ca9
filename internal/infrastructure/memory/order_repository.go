package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	ids    id.Generator
}

// NewOrderRepository defaults to UUID identities when ids is nil.
func NewOrderRepository(ids id.Generator) *OrderRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &OrderRepository{
		orders: make(map[string]*order.Order),
		ids:    ids,
	}
}

func (r *OrderRepository) Create(ctx context.Context, params order.CreateParams) (*order.Order, error) {
	_ = ctx
	if params.Customer == nil {
		return nil, errors.New("order repository: customer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	orderID := r.ids.NewID()
	if _, exists := r.orders[orderID]; exists {
		return nil, order.ErrConflict
	}
	lineIDs := make([]string, len(params.Products))
	for i := range lineIDs {
		lineIDs[i] = r.ids.NewID()
	}

	o, err := order.New(orderID, params.Customer.ID, params.Products, lineIDs)
	if err != nil {
		return nil, err
	}
	r.orders[o.ID] = o.Clone()
	return o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}
