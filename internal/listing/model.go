package listing

import "time"

// Selling modes
const (
	ModeFixedPrice = "fixed_price"
	ModeBidding    = "bidding"
)

// Product statuses
const (
	StatusPendingApproval = "pending_approval"
	StatusActive          = "active"
	StatusPaused          = "paused"
	StatusRejected        = "rejected"
	StatusBiddingClosed   = "bidding_closed"
	StatusSold            = "sold"
)

// Product represents a sellable lot of produce offered by a farmer
type Product struct {
	ID                 string     `json:"id"`
	FarmerID           string     `json:"farmer_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category"`
	QuantityKg         float64    `json:"quantity_kg"`
	SellingMode        string     `json:"selling_mode"`
	FixedPrice         *float64   `json:"fixed_price,omitempty"`
	BasePrice          *float64   `json:"base_price,omitempty"`
	CurrentHighestBid  *float64   `json:"current_highest_bid,omitempty"`
	Status             string     `json:"status"`
	QualityGrade       string     `json:"quality_grade,omitempty"`
	Organic            bool       `json:"organic"`
	FailureReason      *string    `json:"failure_reason,omitempty"`
	FailureSuggestions *string    `json:"failure_suggestions,omitempty"`
	ImageURL           string     `json:"image_url,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateListingRequest is the payload for listing a new product
type CreateListingRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	Category     string  `json:"category" validate:"required"`
	QuantityKg   float64 `json:"quantity_kg" validate:"required,gt=0"`
	SellingMode  string  `json:"selling_mode" validate:"required,oneof=fixed_price bidding"`
	FixedPrice   float64 `json:"fixed_price" validate:"gte=0"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	QualityGrade string  `json:"quality_grade"`
	Organic      bool    `json:"organic"`
	ImageURL     string  `json:"image_url"`
}

// UpdateListingRequest is the payload for editing an existing listing
type UpdateListingRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	QuantityKg   *float64 `json:"quantity_kg" validate:"omitempty,gt=0"`
	FixedPrice   *float64 `json:"fixed_price" validate:"omitempty,gt=0"`
	BasePrice    *float64 `json:"base_price" validate:"omitempty,gt=0"`
	QualityGrade string   `json:"quality_grade"`
	ImageURL     string   `json:"image_url"`
}
