package bidding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureInsightNoBids(t *testing.T) {
	in := FailureInsight(0, 0, 25, "wheat")

	assert.Equal(t, "No bids received - Low buyer interest", in.Reason)
	assert.Contains(t, in.Suggestions, "Lower your base price")
	assert.Contains(t, in.Suggestions, "market reference price")
}

func TestFailureInsightBidsTooLow(t *testing.T) {
	// highest bid under 110% of base price
	in := FailureInsight(5, 26, 25, "wheat")

	assert.Equal(t, "Bids too low relative to base price", in.Reason)
}

func TestFailureInsightFewBidders(t *testing.T) {
	// bids are competitive but only two arrived
	in := FailureInsight(2, 30, 25, "wheat")

	assert.Equal(t, "Limited participation - Too few bidders", in.Reason)
}

func TestFailureInsightDefault(t *testing.T) {
	in := FailureInsight(4, 30, 25, "wheat")

	assert.Equal(t, "Bidding closed without acceptance", in.Reason)
}

// The checks are an ordered decision list: zero bids wins over every
// other condition, and the low-bid check wins over low participation.
func TestFailureInsightOrdering(t *testing.T) {
	in := FailureInsight(1, 26, 25, "wheat")
	assert.Equal(t, "Bids too low relative to base price", in.Reason)

	in = FailureInsight(0, 0, 0, "wheat")
	assert.Equal(t, "No bids received - Low buyer interest", in.Reason)
}

func TestFailureInsightUnknownCategory(t *testing.T) {
	in := FailureInsight(0, 0, 25, "saffron")

	assert.NotContains(t, in.Suggestions, "market reference price")
}
