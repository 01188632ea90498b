package model

import "fmt"

// AllocationLine is the minimal view of a lockable order line used by the
// FIFO walk. The slice handed to Allocate must already be in FIFO order
// (order created_at, order id).
type AllocationLine struct {
	LineID    int64
	OrderID   int64
	Remaining int
}

// Allocation is one line's share of a pick.
type Allocation struct {
	LineID  int64 `json:"line_id"`
	OrderID int64 `json:"order_id"`
	Take    int   `json:"take"`
}

// Allocate distributes qty across lines strictly front to back. The whole
// request must fit; a demand above the total remaining fails with
// ErrInsufficientRemaining and nothing is allocated.
func Allocate(lines []AllocationLine, qty int) ([]Allocation, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: qty must be at least 1", ErrInvalidQuantity)
	}

	total := 0
	for _, l := range lines {
		total += l.Remaining
	}
	if total < qty {
		return nil, fmt.Errorf("%w: requested %d, remaining %d", ErrInsufficientRemaining, qty, total)
	}

	var allocations []Allocation
	left := qty
	for _, l := range lines {
		if left == 0 {
			break
		}
		if l.Remaining <= 0 {
			continue
		}
		take := l.Remaining
		if left < take {
			take = left
		}
		allocations = append(allocations, Allocation{
			LineID:  l.LineID,
			OrderID: l.OrderID,
			Take:    take,
		})
		left -= take
	}

	return allocations, nil
}
