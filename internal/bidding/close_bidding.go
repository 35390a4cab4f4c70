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

// CloseBidding - farmer ends a bidding round without accepting. Every
// bid is rejected and the listing closes with a diagnostic explaining
// why the round likely failed. Shares the product lock with AcceptBid,
// so the two can never both resolve the same round.
func CloseBidding(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_id", "invalid product id"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var (
		ownerID, status, mode, category string
		basePrice                       *float64
	)
	err = tx.QueryRow(ctx, `
		SELECT farmer_id, status, selling_mode, category, base_price
		FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&ownerID, &status, &mode, &category, &basePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}

	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this listing"))
	}
	if mode != listing.ModeBidding {
		return httperr.Respond(c, httperr.Conflictf("invalid_state", "listing is not in bidding mode"))
	}
	if status != listing.StatusActive {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing is %q and bidding cannot be closed", status))
	}

	// Diagnostic inputs come from the full bid history under the lock
	var bidCount int
	var highestBid *float64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), MAX(amount) FROM bids WHERE product_id = $1`,
		productID).Scan(&bidCount, &highestBid)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to read bid history"))
	}

	base := 0.0
	if basePrice != nil {
		base = *basePrice
	}
	highest := 0.0
	if highestBid != nil {
		highest = *highestBid
	}
	insight := FailureInsight(bidCount, highest, base, category)

	// Collect bidders for post-commit notification before statuses flip
	bidderIDs := []string{}
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT buyer_id FROM bids WHERE product_id = $1 AND status IN ('active','outbid')`,
		productID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to read bidders"))
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to parse bidders"))
		}
		bidderIDs = append(bidderIDs, id)
	}
	rows.Close()

	if _, err := tx.Exec(ctx, `
		UPDATE bids SET status = 'rejected', updated_at = NOW()
		WHERE product_id = $1 AND status IN ('active','outbid')`,
		productID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to reject bids"))
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products SET status = 'bidding_closed',
			failure_reason = $2, failure_suggestions = $3, updated_at = NOW()
		WHERE id = $1`,
		productID, insight.Reason, insight.Suggestions); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to close listing"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("bidding_closed")
	logger.FromEcho(c).Info("bidding closed",
		zap.String("product_id", productID), zap.Int("bids", bidCount),
		zap.String("reason", insight.Reason))

	for _, bidderID := range bidderIDs {
		_ = alerts.EnqueueBiddingClosed(bidderID, productID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":             "Bidding closed",
		"failure_reason":      insight.Reason,
		"failure_suggestions": insight.Suggestions,
	})
}
