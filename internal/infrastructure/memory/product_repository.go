package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

// Add inserts or replaces a product.
func (r *ProductRepository) Add(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// UpdateQuantity applies every level or none of them.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, levels []inventory.Level) error {
	_ = ctx
	if len(levels) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range levels {
		if _, ok := r.products[l.ProductID]; !ok {
			return fmt.Errorf("update quantity %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if l.Quantity < 0 {
			return fmt.Errorf("update quantity %s: %w", l.ProductID, domain.ErrInvalidQuantity)
		}
	}

	now := time.Now().UTC()
	for _, l := range levels {
		p := r.products[l.ProductID]
		p.Quantity = l.Quantity
		p.UpdatedAt = now
	}
	return nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
