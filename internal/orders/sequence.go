package orders

// Sequence is the fixed forward progression of order_status. A requested
// transition is valid only if it targets the element immediately after
// the current one, or cancelled, which is reachable from any other
// state, delivered included.
var Sequence = []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered}

// NextStatus returns the element after current in the sequence, or ""
// when current is terminal or unknown.
func NextStatus(current string) string {
	for i, s := range Sequence {
		if s == current && i+1 < len(Sequence) {
			return Sequence[i+1]
		}
	}
	return ""
}

// ValidTransition reports whether an order may move from current to
// requested.
func ValidTransition(current, requested string) bool {
	if current == StatusCancelled {
		return false
	}
	if requested == StatusCancelled {
		return true
	}
	return requested == NextStatus(current)
}
