package inventory

import (
	"errors"
)

var ErrUnknownMode = errors.New("inventory: unknown demand mode")

// Mode decides how repeated product ids within one request draw on stock.
type Mode string

const (
	// ModeIndependent checks every line against the original stock and emits one level per
	// line, so repeated ids can jointly oversell and the last level written wins.
	ModeIndependent Mode = "independent"
	// ModeAggregate sums quantities per product before checking and emits one level per product.
	ModeAggregate Mode = "aggregate"
)

// Line is a requested draw on a product's stock.
type Line struct {
	ProductID string
	Quantity  int
}

// Level is an absolute stock value to write for a product.
type Level struct {
	ProductID string
	Quantity  int
}

// Ledger evaluates lines against a snapshot of available stock. It never mutates the snapshot.
type Ledger struct {
	mode      Mode
	available map[string]int
}

func NewLedger(mode Mode, available map[string]int) (*Ledger, error) {
	switch mode {
	case ModeIndependent, ModeAggregate:
	default:
		return nil, ErrUnknownMode
	}
	snapshot := make(map[string]int, len(available))
	for id, q := range available {
		snapshot[id] = q
	}
	return &Ledger{mode: mode, available: snapshot}, nil
}

// Available reports the snapshot quantity for a product.
func (l *Ledger) Available(productID string) (int, bool) {
	q, ok := l.available[productID]
	return q, ok
}

// Shortfalls returns the ids, in first-seen order and without repeats, whose demand exceeds
// the snapshot. Unknown ids count as zero stock.
func (l *Ledger) Shortfalls(lines []Line) []string {
	var out []string
	seen := make(map[string]struct{})
	flag := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	switch l.mode {
	case ModeAggregate:
		demand, order := totals(lines)
		for _, id := range order {
			if demand[id] > l.available[id] {
				flag(id)
			}
		}
	default:
		for _, line := range lines {
			if line.Quantity > l.available[line.ProductID] {
				flag(line.ProductID)
			}
		}
	}
	return out
}

// Levels computes the stock to write after the lines are committed.
func (l *Ledger) Levels(lines []Line) []Level {
	if l.mode == ModeAggregate {
		demand, order := totals(lines)
		out := make([]Level, 0, len(order))
		for _, id := range order {
			out = append(out, Level{ProductID: id, Quantity: l.available[id] - demand[id]})
		}
		return out
	}

	out := make([]Level, 0, len(lines))
	for _, line := range lines {
		out = append(out, Level{
			ProductID: line.ProductID,
			Quantity:  l.available[line.ProductID] - line.Quantity,
		})
	}
	return out
}

// Duplicates returns the product ids that appear on more than one line, in first-seen order.
func Duplicates(lines []Line) []string {
	counts := make(map[string]int, len(lines))
	var out []string
	for _, line := range lines {
		counts[line.ProductID]++
		if counts[line.ProductID] == 2 {
			out = append(out, line.ProductID)
		}
	}
	return out
}

func totals(lines []Line) (map[string]int, []string) {
	demand := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := demand[line.ProductID]; !ok {
			order = append(order, line.ProductID)
		}
		demand[line.ProductID] += line.Quantity
	}
	return demand, order
}
