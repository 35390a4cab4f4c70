package bidding

import (
	"fmt"

	"github.com/agrimandi/agrimandi/internal/pricing"
)

// Insight is the operator-facing diagnostic attached to a listing when
// bidding closes without acceptance.
type Insight struct {
	Reason      string
	Suggestions string
}

// FailureInsight derives guidance from the bid history: total bid count,
// highest bid seen, and the base price. The checks form an ordered
// decision list; the first match wins.
func FailureInsight(bidCount int, highestBid, basePrice float64, category string) Insight {
	var in Insight

	switch {
	case bidCount == 0:
		in.Reason = "No bids received - Low buyer interest"
		in.Suggestions = "Lower your base price by 10-15% or switch to fixed price selling"
	case highestBid < 1.1*basePrice:
		in.Reason = "Bids too low relative to base price"
		in.Suggestions = "Consider lowering your base price to attract competitive bids"
	case bidCount < 3:
		in.Reason = "Limited participation - Too few bidders"
		in.Suggestions = "Relist with better photos and a fuller description to reach more buyers"
	default:
		in.Reason = "Bidding closed without acceptance"
		in.Suggestions = "Review the received bid amounts before relisting"
	}

	if ref, ok := pricing.ReferencePrice(category); ok {
		in.Suggestions += fmt.Sprintf(" (market reference price: %.2f/kg)", ref)
	}

	return in
}
