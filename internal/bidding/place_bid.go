package bidding

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/alerts"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/listing"
	"github.com/agrimandi/agrimandi/internal/logger"
	"github.com/agrimandi/agrimandi/internal/metrics"
)

// PlaceBid - buyer places or revises a bid on a bidding-mode listing.
//
// The exclusive lock on the product row serializes all concurrent bids
// on the same product: a second transaction re-reads the committed
// current_highest_bid only after the first releases the lock, so two
// racing bids can never both clear a stale highest value.
func PlaceBid(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_id", "invalid product id"))
	}

	req := new(PlaceBidRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_amount", "bid amount must be positive"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	// Lock the product row before any read used for a decision
	var (
		farmerID, status, mode string
		basePrice, highestBid  *float64
	)
	err = tx.QueryRow(ctx, `
		SELECT farmer_id, status, selling_mode, base_price, current_highest_bid
		FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&farmerID, &status, &mode, &basePrice, &highestBid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}

	if farmerID == buyerID {
		return httperr.Respond(c, httperr.Forbiddenf("own_listing", "you cannot bid on your own listing"))
	}
	if status != listing.StatusActive || mode != listing.ModeBidding {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing is not open for bidding"))
	}

	base := 0.0
	if basePrice != nil {
		base = *basePrice
	}
	highest := 0.0
	if highestBid != nil {
		highest = *highestBid
	}

	if req.Amount <= base {
		return httperr.Respond(c, httperr.Validationf("bid_too_low",
			"bid must exceed the base price of %.2f", base))
	}
	if req.Amount <= highest {
		return httperr.Respond(c, httperr.Validationf("bid_too_low",
			"bid must exceed the current highest bid of %.2f", highest))
	}

	// Remember the top rival before flipping statuses, for the outbid alert
	var outbidBuyerID string
	err = tx.QueryRow(ctx, `
		SELECT buyer_id FROM bids
		WHERE product_id = $1 AND status = 'active' AND buyer_id != $2
		ORDER BY amount DESC LIMIT 1`,
		productID, buyerID).Scan(&outbidBuyerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to read bids"))
	}

	// One bid per buyer: a buyer revises an existing active bid in place
	// rather than stacking a second one
	var bidID string
	res, err := tx.Exec(ctx, `
		UPDATE bids SET amount = $3, updated_at = NOW()
		WHERE product_id = $1 AND buyer_id = $2 AND status = 'active'`,
		productID, buyerID, req.Amount)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update bid"))
	}
	if res.RowsAffected() == 0 {
		bidID = uuid.New().String()
		_, err = tx.Exec(ctx, `
			INSERT INTO bids (id, product_id, buyer_id, amount, status)
			VALUES ($1, $2, $3, $4, 'active')`,
			bidID, productID, buyerID, req.Amount)
		if err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to place bid"))
		}
	}

	// Every other active bid is now outbid
	_, err = tx.Exec(ctx, `
		UPDATE bids SET status = 'outbid', updated_at = NOW()
		WHERE product_id = $1 AND buyer_id != $2 AND status = 'active'`,
		productID, buyerID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update rival bids"))
	}

	_, err = tx.Exec(ctx, `
		UPDATE products SET current_highest_bid = $2, updated_at = NOW() WHERE id = $1`,
		productID, req.Amount)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update highest bid"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("bid_placed")
	logger.FromEcho(c).Info("bid placed",
		zap.String("product_id", productID), zap.String("buyer_id", buyerID),
		zap.Float64("amount", req.Amount))

	// Post-commit, best-effort notifications
	_ = alerts.EnqueueBidPlaced(farmerID, productID, buyerID, req.Amount)
	if outbidBuyerID != "" {
		_ = alerts.EnqueueBidOutbid(outbidBuyerID, productID, req.Amount)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":             "Bid placed successfully",
		"amount":              req.Amount,
		"current_highest_bid": req.Amount,
	})
}
