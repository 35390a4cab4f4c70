package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	assert.Equal(t, StatusConfirmed, NextStatus(StatusPending))
	assert.Equal(t, StatusPreparing, NextStatus(StatusConfirmed))
	assert.Equal(t, StatusReady, NextStatus(StatusPreparing))
	assert.Equal(t, StatusDelivered, NextStatus(StatusReady))

	assert.Empty(t, NextStatus(StatusDelivered))
	assert.Empty(t, NextStatus(StatusCancelled))
	assert.Empty(t, NextStatus("refunded"))
}

func TestValidTransitionForwardOnly(t *testing.T) {
	// Each status may only advance to its immediate successor.
	for i := 0; i < len(Sequence)-1; i++ {
		current := Sequence[i]
		for j, requested := range Sequence {
			want := j == i+1
			assert.Equal(t, want, ValidTransition(current, requested),
				"%s -> %s", current, requested)
		}
	}
}

func TestValidTransitionCancellation(t *testing.T) {
	// cancelled is reachable from every state in the sequence,
	// delivered included
	for _, current := range Sequence {
		assert.True(t, ValidTransition(current, StatusCancelled), current)
	}

	// but never out of cancelled, not even to itself
	assert.False(t, ValidTransition(StatusCancelled, StatusCancelled))
	assert.False(t, ValidTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, ValidTransition(StatusCancelled, StatusDelivered))

	// delivered still blocks everything except cancellation
	assert.False(t, ValidTransition(StatusDelivered, StatusPending))
	assert.False(t, ValidTransition(StatusDelivered, StatusConfirmed))
}
