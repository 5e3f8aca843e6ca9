package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// Add inserts or replaces a customer.
func (r *CustomerRepository) Add(ctx context.Context, c *domain.Customer) error {
	_ = ctx
	if c == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *c
	r.customers[c.ID] = &clone
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}
