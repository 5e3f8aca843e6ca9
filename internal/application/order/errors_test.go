package order

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := newError(KindProductsNotFound, ErrProductsNotFound, []string{"P8", "P9"}, nil)
	assert.Equal(t, "order: could not find all the products with the given ids: P8, P9", err.Error())

	cause := errors.New("timeout")
	err = newError(KindRepository, ErrRepository, nil, cause)
	assert.Equal(t, "order: repository failure: timeout", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", newError(KindInsufficientStock, ErrInsufficientStock, []string{"P1"}, nil))

	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrInsufficientStock)
	assert.NotErrorIs(t, wrapped, ErrProductsNotFound)
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		"empty defaults to aggregate": {in: "", want: DuplicateAggregate},
		"aggregate":                   {in: "aggregate", want: DuplicateAggregate},
		"independent mixed case":      {in: " Independent ", want: DuplicateIndependent},
		"reject":                      {in: "reject", want: DuplicateReject},
		"unknown":                     {in: "merge", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDuplicatePolicy(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestError_ZeroValueStillPrints(t *testing.T) {
	err := &Error{Kind: KindEmptyOrder}
	assert.Equal(t, "order: empty_order", err.Error())
	assert.Empty(t, err.Unwrap())
}
