package customer

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer: not found")

type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
