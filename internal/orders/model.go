package orders

import "time"

// Payment statuses. The transition is one-way: a completed order never
// reverts to pending.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Order statuses. See Sequence for the allowed progression.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order is the durable settlement record created by a fixed-price
// purchase or an accepted bid. Orders are never deleted.
type Order struct {
	ID               string     `json:"id"`
	OrderNumber      string     `json:"order_number"`
	ProductID        string     `json:"product_id"`
	FarmerID         string     `json:"farmer_id"`
	BuyerID          string     `json:"buyer_id"`
	QuantityKg       float64    `json:"quantity_kg"`
	PricePerKg       float64    `json:"price_per_kg"`
	TotalAmount      float64    `json:"total_amount"`
	CommissionAmount float64    `json:"commission_amount"`
	OrderStatus      string     `json:"order_status"`
	PaymentStatus    string     `json:"payment_status"`
	PaymentMethod    *string    `json:"payment_method,omitempty"`
	TransactionID    *string    `json:"transaction_id,omitempty"`
	InvoicePath      *string    `json:"invoice_path,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateOrderRequest is the payload for a fixed-price purchase
type CreateOrderRequest struct {
	ProductID  string  `json:"product_id" validate:"required,uuid"`
	QuantityKg float64 `json:"quantity_kg" validate:"required,gt=0"`
}

// UpdateStatusRequest is the payload for advancing an order
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed preparing ready delivered cancelled"`
}

// PaymentRequest is the payload for paying an order
type PaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=upi card netbanking cod"`
}
