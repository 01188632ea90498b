package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	lines := []AllocationLine{
		{LineID: 1, OrderID: 100, Remaining: 2},
		{LineID: 2, OrderID: 101, Remaining: 3},
		{LineID: 3, OrderID: 102, Remaining: 1},
	}

	t.Run("fills strictly front to back", func(t *testing.T) {
		allocations, err := Allocate(lines, 4)
		require.NoError(t, err)

		assert.Equal(t, []Allocation{
			{LineID: 1, OrderID: 100, Take: 2},
			{LineID: 2, OrderID: 101, Take: 2},
		}, allocations)
	})

	t.Run("exact total drains every line", func(t *testing.T) {
		allocations, err := Allocate(lines, 6)
		require.NoError(t, err)
		require.Len(t, allocations, 3)
		assert.Equal(t, 1, allocations[2].Take)
	})

	t.Run("single unit goes to the oldest order", func(t *testing.T) {
		allocations, err := Allocate(lines, 1)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, int64(100), allocations[0].OrderID)
	})

	t.Run("over demand fails without partial allocation", func(t *testing.T) {
		allocations, err := Allocate(lines, 7)
		assert.ErrorIs(t, err, ErrInsufficientRemaining)
		assert.Nil(t, allocations)
	})

	t.Run("drained lines are skipped", func(t *testing.T) {
		withDrained := []AllocationLine{
			{LineID: 1, OrderID: 100, Remaining: 0},
			{LineID: 2, OrderID: 101, Remaining: 2},
		}
		allocations, err := Allocate(withDrained, 2)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, int64(2), allocations[0].LineID)
	})

	t.Run("zero qty is rejected", func(t *testing.T) {
		_, err := Allocate(lines, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("no lines at all", func(t *testing.T) {
		_, err := Allocate(nil, 1)
		assert.ErrorIs(t, err, ErrInsufficientRemaining)
	})
}
