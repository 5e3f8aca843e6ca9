package inventory

import "time"

// StockUpdatedEvent is emitted after a product's stock has been overwritten by an order.
type StockUpdatedEvent struct {
	OrderID    string
	ProductID  string
	Previous   int
	Quantity   int
	OccurredAt time.Time
}

func (StockUpdatedEvent) EventName() string { return "inventory.stock_updated" }

func NewStockUpdatedEvent(orderID string, previous int, level Level) StockUpdatedEvent {
	return StockUpdatedEvent{
		OrderID:    orderID,
		ProductID:  level.ProductID,
		Previous:   previous,
		Quantity:   level.Quantity,
		OccurredAt: time.Now().UTC(),
	}
}
