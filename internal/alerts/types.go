package alerts

import "time"

// Task type constants
const (
	TaskBidPlaced          = "notify:bid_placed"
	TaskBidOutbid          = "notify:bid_outbid"
	TaskBidAccepted        = "notify:bid_accepted"
	TaskBiddingClosed      = "notify:bidding_closed"
	TaskOrderCreated       = "notify:order_created"
	TaskOrderStatusChanged = "notify:order_status_changed"
	TaskPaymentReceived    = "notify:payment_received"
	TaskInvoiceReady       = "notify:invoice_ready"
)

// Notification is the envelope persisted for in-app delivery. Emission
// is strictly post-commit and fire-and-forget; a failed notification
// never rolls back the business transaction it follows.
type Notification struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Link   string    `json:"link,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// BidPlacedPayload notifies the farmer of a new or revised bid
type BidPlacedPayload struct {
	ProductID string       `json:"product_id"`
	BuyerID   string       `json:"buyer_id"`
	Amount    float64      `json:"amount"`
	Envelope  Notification `json:"envelope"`
}

// BidOutbidPayload notifies the previous top bidder
type BidOutbidPayload struct {
	ProductID string       `json:"product_id"`
	Amount    float64      `json:"amount"`
	Envelope  Notification `json:"envelope"`
}

// BidAcceptedPayload notifies the winning buyer
type BidAcceptedPayload struct {
	ProductID   string       `json:"product_id"`
	OrderID     string       `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	Amount      float64      `json:"amount"`
	Envelope    Notification `json:"envelope"`
}

// BiddingClosedPayload notifies a bidder that the round ended unresolved
type BiddingClosedPayload struct {
	ProductID string       `json:"product_id"`
	Envelope  Notification `json:"envelope"`
}

// OrderCreatedPayload notifies the farmer of a fixed-price purchase
type OrderCreatedPayload struct {
	OrderID     string       `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	QuantityKg  float64      `json:"quantity_kg"`
	Total       float64      `json:"total"`
	Envelope    Notification `json:"envelope"`
}

// OrderStatusChangedPayload notifies the buyer of order progress
type OrderStatusChangedPayload struct {
	OrderID  string       `json:"order_id"`
	Status   string       `json:"status"`
	Envelope Notification `json:"envelope"`
}

// PaymentReceivedPayload notifies the farmer of a completed payment
type PaymentReceivedPayload struct {
	OrderID       string       `json:"order_id"`
	TransactionID string       `json:"transaction_id"`
	Total         float64      `json:"total"`
	Envelope      Notification `json:"envelope"`
}

// InvoiceReadyPayload notifies the buyer that the invoice is available
type InvoiceReadyPayload struct {
	OrderID     string       `json:"order_id"`
	InvoicePath string       `json:"invoice_path"`
	Envelope    Notification `json:"envelope"`
}
