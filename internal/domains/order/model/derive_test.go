package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(ordered, picked, short int) OrderLine {
	return OrderLine{QtyOrdered: ordered, QtyPicked: picked, QtyShort: short}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name        string
		order       Order
		lines       []OrderLine
		wantChanged bool
		wantStatus  string
		wantReady   bool
	}{
		{
			name:        "untouched lines stay open",
			order:       Order{Status: StatusOpen},
			lines:       []OrderLine{line(3, 0, 0), line(2, 0, 0)},
			wantChanged: false,
			wantStatus:  StatusOpen,
			wantReady:   false,
		},
		{
			name:        "partial progress moves to picking",
			order:       Order{Status: StatusOpen},
			lines:       []OrderLine{line(3, 1, 0), line(2, 0, 0)},
			wantChanged: true,
			wantStatus:  StatusPicking,
			wantReady:   false,
		},
		{
			name:        "all picked becomes ready",
			order:       Order{Status: StatusPicking},
			lines:       []OrderLine{line(3, 3, 0), line(2, 2, 0)},
			wantChanged: true,
			wantStatus:  StatusReadyToPack,
			wantReady:   true,
		},
		{
			name:        "shorts count toward done",
			order:       Order{Status: StatusPicking},
			lines:       []OrderLine{line(3, 1, 2), line(2, 0, 2)},
			wantChanged: true,
			wantStatus:  StatusReadyToPack,
			wantReady:   true,
		},
		{
			name:        "revert from ready when a line reopens",
			order:       Order{Status: StatusReadyToPack, ReadyToPack: true},
			lines:       []OrderLine{line(3, 2, 0)},
			wantChanged: true,
			wantStatus:  StatusPicking,
			wantReady:   false,
		},
		{
			name:        "fully reverted goes back to open",
			order:       Order{Status: StatusPicking},
			lines:       []OrderLine{line(3, 0, 0)},
			wantChanged: true,
			wantStatus:  StatusOpen,
			wantReady:   false,
		},
		{
			name:        "packed orders are terminal",
			order:       Order{Status: StatusPacked},
			lines:       []OrderLine{line(3, 0, 0)},
			wantChanged: false,
			wantStatus:  StatusPacked,
			wantReady:   false,
		},
		{
			name:        "cancelled orders are terminal",
			order:       Order{Status: StatusCancelled},
			lines:       []OrderLine{line(3, 3, 0)},
			wantChanged: false,
			wantStatus:  StatusCancelled,
			wantReady:   false,
		},
		{
			name:        "no lines in batch is never ready",
			order:       Order{Status: StatusOpen},
			lines:       nil,
			wantChanged: false,
			wantStatus:  StatusOpen,
			wantReady:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			changed := Derive(&order, tt.lines)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, order.Status)
			assert.Equal(t, tt.wantReady, order.ReadyToPack)
		})
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	order := Order{Status: StatusOpen}
	lines := []OrderLine{line(3, 3, 0)}

	assert.True(t, Derive(&order, lines))
	assert.False(t, Derive(&order, lines))
	assert.Equal(t, StatusReadyToPack, order.Status)
}
