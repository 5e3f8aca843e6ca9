package product

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("product: not found")
	ErrInvalidPrice    = errors.New("product: price must be zero or greater")
	ErrInvalidQuantity = errors.New("product: quantity must be zero or greater")
)

// Product is a catalog entry. Price is in minor currency units; Quantity is the stock
// not yet committed to any order.
type Product struct {
	ID        string
	Name      string
	Price     int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, name string, price int64, quantity int) (*Product, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Index maps products by id. The first product wins when ids repeat.
func Index(products []*Product) map[string]*Product {
	out := make(map[string]*Product, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if _, ok := out[p.ID]; !ok {
			out[p.ID] = p
		}
	}
	return out
}
