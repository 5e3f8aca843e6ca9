package order

import "time"

// OrderCreatedEvent is a domain event emitted when a new order has been persisted.
type OrderCreatedEvent struct {
	OrderID    string
	CustomerID string
	Lines      int
	Total      int64
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Lines:      len(o.Products),
		Total:      o.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
