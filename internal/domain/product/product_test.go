package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		price    int64
		quantity int
		wantErr  error
	}{
		"valid product":         {price: 500, quantity: 10},
		"free product in stock": {price: 0, quantity: 1},
		"negative price":        {price: -1, quantity: 1, wantErr: ErrInvalidPrice},
		"negative quantity":     {price: 100, quantity: -1, wantErr: ErrInvalidQuantity},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := New("P1", "Widget", tc.price, tc.quantity)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.price, p.Price)
			assert.Equal(t, tc.quantity, p.Quantity)
			assert.False(t, p.CreatedAt.IsZero())
		})
	}
}

func TestIndex_FirstMatchWins(t *testing.T) {
	first := &Product{ID: "P1", Price: 500}
	index := Index([]*Product{first, nil, {ID: "P1", Price: 900}, {ID: "P2"}})

	require.Len(t, index, 2)
	assert.Same(t, first, index["P1"])
}
