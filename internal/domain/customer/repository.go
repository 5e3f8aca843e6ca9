package customer

import "context"

// Repository returns ErrNotFound when no customer has the given id.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
}
