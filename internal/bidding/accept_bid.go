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
	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/listing"
	"github.com/agrimandi/agrimandi/internal/logger"
	"github.com/agrimandi/agrimandi/internal/metrics"
	"github.com/agrimandi/agrimandi/internal/orders"
	"github.com/agrimandi/agrimandi/internal/pricing"
)

// AcceptBid - farmer accepts a bid, which resolves the whole round:
// the bid wins, every other bid is rejected, the listing closes, and
// the settlement order is created, all in one transaction.
//
// AcceptBid and CloseBidding contend on the same product lock; whichever
// commits first wins and the loser observes a non-active state and
// fails with Conflict.
func AcceptBid(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_id", "invalid bid id"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	// Lock the bid and its parent product in one scope, before any read
	// the decision depends on
	var (
		productID, buyerID, bidStatus string
		ownerID, productStatus, mode  string
		amount, quantityKg            float64
	)
	err = tx.QueryRow(ctx, `
		SELECT b.product_id, b.buyer_id, b.status, b.amount,
		       p.farmer_id, p.status, p.selling_mode, p.quantity_kg
		FROM bids b
		JOIN products p ON p.id = b.product_id
		WHERE b.id = $1
		FOR UPDATE OF b, p`,
		bidID).Scan(&productID, &buyerID, &bidStatus, &amount,
		&ownerID, &productStatus, &mode, &quantityKg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("bid_not_found", "bid not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch bid"))
	}

	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this listing"))
	}
	if bidStatus != StatusActive {
		return httperr.Respond(c, httperr.Conflictf("bid_resolved",
			"bid is %q and can no longer be accepted", bidStatus))
	}
	if productStatus != listing.StatusActive || mode != listing.ModeBidding {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing is no longer open for bidding"))
	}

	// Resolve the round: winner, losers, listing closure
	if _, err := tx.Exec(ctx,
		`UPDATE bids SET status = 'won', updated_at = NOW() WHERE id = $1`, bidID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to mark bid won"))
	}
	if _, err := tx.Exec(ctx, `
		UPDATE bids SET status = 'rejected', updated_at = NOW()
		WHERE product_id = $1 AND id != $2`,
		productID, bidID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to reject other bids"))
	}
	if _, err := tx.Exec(ctx,
		`UPDATE products SET status = 'bidding_closed', updated_at = NOW() WHERE id = $1`,
		productID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to close listing"))
	}

	// Bidding sells the whole lot at the accepted per-kg amount
	total := pricing.Total(quantityKg, amount)
	commission := pricing.Commission(total, config.Get().Market.CommissionRate)

	orderID := uuid.New().String()
	orderNumber := orders.NewOrderNumber()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, product_id, farmer_id, buyer_id,
			quantity_kg, price_per_kg, total_amount, commission_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		orderID, orderNumber, productID, farmerID, buyerID,
		quantityKg, amount, total, commission)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to create order"))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_orders = total_orders + 1 WHERE id = $1`, farmerID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update counters"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("bid_accepted")
	logger.FromEcho(c).Info("bid accepted",
		zap.String("bid_id", bidID), zap.String("product_id", productID),
		zap.String("order_id", orderID), zap.Float64("total", total))

	_ = alerts.EnqueueBidAccepted(buyerID, productID, orderID, orderNumber, amount)

	return c.JSON(http.StatusOK, echo.Map{
		"message":           "Bid accepted and order created",
		"order_id":          orderID,
		"order_number":      orderNumber,
		"total_amount":      total,
		"commission_amount": commission,
	})
}
