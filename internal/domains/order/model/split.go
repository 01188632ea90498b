package model

import "fmt"

// ValidateSplit checks a split assignment against the order's lines.
// Rules: every line of the order appears exactly once, batches are within
// 1..MaxShipments, the used batches form a contiguous prefix starting at 1,
// and every used batch holds at least one line. Returns the resulting
// total_shipments.
func ValidateSplit(lines []OrderLine, assignments []SplitAssignment) (int, error) {
	if len(assignments) == 0 {
		return 0, fmt.Errorf("%w: no assignments", ErrInvalidSplit)
	}

	byLine := make(map[int64]int, len(assignments))
	for _, a := range assignments {
		if a.Batch < 1 || a.Batch > MaxShipments {
			return 0, fmt.Errorf("%w: batch %d out of range 1..%d", ErrInvalidSplit, a.Batch, MaxShipments)
		}
		if _, dup := byLine[a.LineID]; dup {
			return 0, fmt.Errorf("%w: line %d assigned twice", ErrInvalidSplit, a.LineID)
		}
		byLine[a.LineID] = a.Batch
	}

	if len(byLine) != len(lines) {
		return 0, fmt.Errorf("%w: every order line must be assigned", ErrInvalidSplit)
	}

	maxBatch := 0
	used := make(map[int]bool)
	for _, line := range lines {
		batch, ok := byLine[line.ID]
		if !ok {
			return 0, fmt.Errorf("%w: line %d not assigned", ErrInvalidSplit, line.ID)
		}
		used[batch] = true
		if batch > maxBatch {
			maxBatch = batch
		}
	}

	// Contiguous prefix: 1..maxBatch all populated.
	for b := 1; b <= maxBatch; b++ {
		if !used[b] {
			return 0, fmt.Errorf("%w: batch %d is empty", ErrInvalidSplit, b)
		}
	}

	return maxBatch, nil
}
