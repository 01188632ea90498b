package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitLines(ids ...int64) []OrderLine {
	lines := make([]OrderLine, len(ids))
	for i, id := range ids {
		lines[i] = OrderLine{ID: id}
	}
	return lines
}

func TestValidateSplit(t *testing.T) {
	lines := splitLines(10, 11, 12)

	t.Run("two batches", func(t *testing.T) {
		total, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 11, Batch: 2},
			{LineID: 12, Batch: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("single batch collapses to one shipment", func(t *testing.T) {
		total, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 11, Batch: 1},
			{LineID: 12, Batch: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("gap in batch numbering", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 11, Batch: 3},
			{LineID: 12, Batch: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("batch zero is out of range", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 0},
			{LineID: 11, Batch: 1},
			{LineID: 12, Batch: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("batch above ceiling", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: MaxShipments + 1},
			{LineID: 11, Batch: 1},
			{LineID: 12, Batch: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 11, Batch: 2},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("unknown line", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 11, Batch: 2},
			{LineID: 99, Batch: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("duplicate assignment", func(t *testing.T) {
		_, err := ValidateSplit(lines, []SplitAssignment{
			{LineID: 10, Batch: 1},
			{LineID: 10, Batch: 2},
			{LineID: 11, Batch: 1},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})

	t.Run("no assignments", func(t *testing.T) {
		_, err := ValidateSplit(lines, nil)
		assert.ErrorIs(t, err, ErrInvalidSplit)
	})
}
