package order

import (
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
)

// DuplicatePolicy decides what happens when one request names the same product twice.
type DuplicatePolicy string

const (
	// DuplicateAggregate sums the quantities per product before the stock check and the update.
	DuplicateAggregate DuplicatePolicy = "aggregate"
	// DuplicateIndependent checks each line against the original stock. Two lines can
	// jointly oversell, and the stock written is the one computed for the last line.
	DuplicateIndependent DuplicatePolicy = "independent"
	// DuplicateReject fails the request before any lookup.
	DuplicateReject DuplicatePolicy = "reject"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateAggregate, nil
	case DuplicateAggregate, DuplicateIndependent, DuplicateReject:
		return p, nil
	default:
		return "", fmt.Errorf("order: unknown duplicate policy %q", s)
	}
}

func (p DuplicatePolicy) mode() inventory.Mode {
	if p == DuplicateIndependent {
		return inventory.ModeIndependent
	}
	return inventory.ModeAggregate
}

// Options tunes CreateOrderUseCase. The zero value aggregates duplicates, rejects empty
// orders and runs without a transaction.
type Options struct {
	Duplicates DuplicatePolicy
	// AllowEmpty lets a request without products create an order with no lines.
	AllowEmpty bool
	// Transactor, when set, makes the order write and the stock update commit together.
	Transactor Transactor
}
