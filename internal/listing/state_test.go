package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"approve pending", StatusPendingApproval, StatusActive, true},
		{"reject pending", StatusPendingApproval, StatusRejected, true},
		{"pending cannot skip to sold", StatusPendingApproval, StatusSold, false},
		{"pause active", StatusActive, StatusPaused, true},
		{"active closes bidding", StatusActive, StatusBiddingClosed, true},
		{"active sells out", StatusActive, StatusSold, true},
		{"resume paused", StatusPaused, StatusActive, true},
		{"paused cannot sell directly", StatusPaused, StatusSold, false},
		{"rejected is terminal", StatusRejected, StatusActive, false},
		{"sold is terminal", StatusSold, StatusActive, false},
		{"bidding_closed is terminal", StatusBiddingClosed, StatusActive, false},
		{"unknown status", "archived", StatusActive, false},
		{"no self loop", StatusActive, StatusActive, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusSold))
	assert.True(t, IsTerminal(StatusRejected))
	assert.True(t, IsTerminal(StatusBiddingClosed))

	assert.False(t, IsTerminal(StatusActive))
	assert.False(t, IsTerminal(StatusPaused))
	assert.False(t, IsTerminal(StatusPendingApproval))
}
