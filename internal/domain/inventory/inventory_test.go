package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger_UnknownMode(t *testing.T) {
	_, err := NewLedger("fifo", nil)
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestLedger_Shortfalls(t *testing.T) {
	stock := map[string]int{"P1": 5, "P2": 2}

	tests := map[string]struct {
		mode  Mode
		lines []Line
		want  []string
	}{
		"enough stock": {
			mode:  ModeAggregate,
			lines: []Line{{ProductID: "P1", Quantity: 3}, {ProductID: "P2", Quantity: 2}},
		},
		"single line over stock": {
			mode:  ModeIndependent,
			lines: []Line{{ProductID: "P2", Quantity: 5}},
			want:  []string{"P2"},
		},
		"duplicates pass independently": {
			mode:  ModeIndependent,
			lines: []Line{{ProductID: "P1", Quantity: 4}, {ProductID: "P1", Quantity: 4}},
		},
		"duplicates are summed": {
			mode:  ModeAggregate,
			lines: []Line{{ProductID: "P1", Quantity: 4}, {ProductID: "P1", Quantity: 4}},
			want:  []string{"P1"},
		},
		"repeated shortfall reported once": {
			mode:  ModeIndependent,
			lines: []Line{{ProductID: "P2", Quantity: 3}, {ProductID: "P2", Quantity: 3}},
			want:  []string{"P2"},
		},
		"unknown product has no stock": {
			mode:  ModeAggregate,
			lines: []Line{{ProductID: "P9", Quantity: 1}},
			want:  []string{"P9"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ledger, err := NewLedger(tc.mode, stock)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ledger.Shortfalls(tc.lines))
		})
	}
}

func TestLedger_Levels(t *testing.T) {
	stock := map[string]int{"P1": 5, "P2": 10}
	lines := []Line{{ProductID: "P1", Quantity: 4}, {ProductID: "P2", Quantity: 3}, {ProductID: "P1", Quantity: 1}}

	independent, err := NewLedger(ModeIndependent, stock)
	require.NoError(t, err)
	assert.Equal(t, []Level{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "P2", Quantity: 7},
		{ProductID: "P1", Quantity: 4},
	}, independent.Levels(lines))

	aggregate, err := NewLedger(ModeAggregate, stock)
	require.NoError(t, err)
	assert.Equal(t, []Level{
		{ProductID: "P1", Quantity: 0},
		{ProductID: "P2", Quantity: 7},
	}, aggregate.Levels(lines))
}

func TestLedger_SnapshotIsCopied(t *testing.T) {
	stock := map[string]int{"P1": 5}
	ledger, err := NewLedger(ModeAggregate, stock)
	require.NoError(t, err)

	stock["P1"] = 0
	q, ok := ledger.Available("P1")
	assert.True(t, ok)
	assert.Equal(t, 5, q)
}

func TestDuplicates(t *testing.T) {
	lines := []Line{{ProductID: "P1"}, {ProductID: "P2"}, {ProductID: "P1"}, {ProductID: "P1"}, {ProductID: "P2"}}
	assert.Equal(t, []string{"P1", "P2"}, Duplicates(lines))
	assert.Empty(t, Duplicates([]Line{{ProductID: "P1"}}))
}
