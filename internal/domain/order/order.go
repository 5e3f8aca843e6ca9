package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("order: not found")
	ErrConflict = errors.New("order: conflict")
)

// OrderProduct is a persisted line item. Price is the unit price captured when the order
// was placed and never follows later catalog changes.
type OrderProduct struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     int64
	CreatedAt time.Time
}

type Order struct {
	ID         string
	CustomerID string
	Products   []OrderProduct
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line is the input for one order line.
type Line struct {
	ProductID string
	Quantity  int
	Price     int64
}

// New builds an order whose line items keep the input order. lineIDs supplies one id
// per line, in the same order.
func New(id, customerID string, lines []Line, lineIDs []string) (*Order, error) {
	if id == "" {
		return nil, errors.New("order: id is required")
	}
	if len(lineIDs) != len(lines) {
		return nil, errors.New("order: one line id per product is required")
	}

	now := time.Now().UTC()
	products := make([]OrderProduct, 0, len(lines))
	for i, l := range lines {
		products = append(products, OrderProduct{
			ID:        lineIDs[i],
			OrderID:   id,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			CreatedAt: now,
		})
	}

	return &Order{
		ID:         id,
		CustomerID: customerID,
		Products:   products,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Total is the sum of price times quantity over all lines.
func (o *Order) Total() int64 {
	var total int64
	for _, p := range o.Products {
		total += p.Price * int64(p.Quantity)
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Products != nil {
		clone.Products = append([]OrderProduct(nil), o.Products...)
	}
	return &clone
}
