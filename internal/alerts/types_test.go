package alerts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskNamesShareNamespace(t *testing.T) {
	tasks := []string{
		TaskBidPlaced, TaskBidOutbid, TaskBidAccepted, TaskBiddingClosed,
		TaskOrderCreated, TaskOrderStatusChanged, TaskPaymentReceived, TaskInvoiceReady,
	}

	seen := make(map[string]bool)
	for _, task := range tasks {
		assert.Regexp(t, `^notify:[a-z_]+$`, task)
		assert.False(t, seen[task], "duplicate task name %s", task)
		seen[task] = true
	}
}

// Every payload type embeds the envelope under the same JSON key, which
// is what lets one handler serve all task types.
func TestEnvelopeExtraction(t *testing.T) {
	payload := BidAcceptedPayload{
		ProductID:   "p1",
		OrderID:     "o1",
		OrderNumber: "ORD-20260830-A1B2C3",
		Amount:      26.5,
		Envelope: Notification{
			UserID: "u1",
			Type:   "bid_accepted",
			Title:  "Your bid won",
		},
	}

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	var env envelopeOnly
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, "u1", env.Envelope.UserID)
	assert.Equal(t, "bid_accepted", env.Envelope.Type)
}
