package bidding

import "time"

// Bid statuses. Exactly one bid per product may ever be won; at most one
// bid per (product, buyer) pair is active at any time.
const (
	StatusActive   = "active"
	StatusOutbid   = "outbid"
	StatusWon      = "won"
	StatusRejected = "rejected"
)

// Bid represents a buyer's priced offer on a bidding-mode listing
type Bid struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BuyerID   string    `json:"buyer_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceBidRequest is the payload for placing or revising a bid
type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
