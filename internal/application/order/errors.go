package order

import (
	"errors"
	"strings"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

// Kind is the machine-readable category of a failed order operation.
type Kind string

const (
	KindCustomerNotFound  Kind = "CUSTOMER_NOT_FOUND"
	KindProductsNotFound  Kind = "PRODUCTS_NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindDuplicateProduct  Kind = "DUPLICATE_PRODUCT"
	KindEmptyOrder        Kind = "EMPTY_ORDER"
	KindOrderNotFound     Kind = "ORDER_NOT_FOUND"
	KindRepository        Kind = "REPOSITORY_FAILURE"
	KindStockUpdate       Kind = "STOCK_UPDATE_FAILED"
)

var (
	ErrCustomerNotFound  = errors.New("order: could not find any customer with the given id")
	ErrProductsNotFound  = errors.New("order: could not find all the products with the given ids")
	ErrInsufficientStock = errors.New("order: could not find available quantities for all the products")
	ErrDuplicateProduct  = errors.New("order: the same product was requested more than once")
	ErrEmptyOrder        = errors.New("order: at least one product is required")
	ErrNotFound          = domain.ErrNotFound
	ErrRepository        = errors.New("order: repository failure")
	// ErrStockUpdate means the order was persisted but its stock decrement was not.
	ErrStockUpdate = errors.New("order: order persisted but stock update failed")
)

// Error is returned by the order use cases. errors.Is matches both the package sentinel
// for its Kind and the underlying cause.
type Error struct {
	Kind       Kind
	ProductIDs []string
	// OrderID is set when an order was persisted before the failure.
	OrderID string

	sentinel error
	cause    error
}

func newError(kind Kind, sentinel error, productIDs []string, cause error) *Error {
	return &Error{Kind: kind, ProductIDs: productIDs, sentinel: sentinel, cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.sentinel != nil {
		b.WriteString(e.sentinel.Error())
	} else {
		b.WriteString("order: " + strings.ToLower(string(e.Kind)))
	}
	if len(e.ProductIDs) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.ProductIDs, ", "))
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.sentinel != nil {
		errs = append(errs, e.sentinel)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// KindOf returns the Kind carried by err, or "" when err did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
