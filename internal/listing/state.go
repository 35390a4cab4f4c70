package listing

// transitions is the allowed-edges table for the product lifecycle.
// pending_approval and rejected edges belong to admin approval; sold and
// bidding_closed are driven only by the bid/order engines.
var transitions = map[string][]string{
	StatusPendingApproval: {StatusActive, StatusRejected},
	StatusActive:          {StatusPaused, StatusBiddingClosed, StatusSold},
	StatusPaused:          {StatusActive},
	StatusRejected:        {},
	StatusBiddingClosed:   {},
	StatusSold:            {},
}

// CanTransition reports whether a product may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing edges
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
