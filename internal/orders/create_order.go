package orders

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
	"github.com/agrimandi/agrimandi/internal/pricing"
)

// belowMinimum reports whether an order quantity falls under the
// platform minimum. An order taking the entire remaining lot is exempt,
// so a remainder smaller than the minimum can still be sold off instead
// of stranding the listing.
func belowMinimum(quantityKg, remaining, minKg float64) bool {
	return quantityKg < minKg && quantityKg < remaining
}

// CreateFixedPriceOrder - buyer purchases part of a fixed-price lot.
//
// The product row lock serializes concurrent purchases, so the quantity
// check and the decrement happen against committed state: remaining
// stock can never go negative, and the listing flips to sold exactly
// when it reaches zero.
func CreateFixedPriceOrder(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(CreateOrderRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid order data"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var (
		farmerID, status, mode string
		remaining              float64
		fixedPrice             *float64
	)
	err = tx.QueryRow(ctx, `
		SELECT farmer_id, status, selling_mode, quantity_kg, fixed_price
		FROM products WHERE id = $1 FOR UPDATE`,
		req.ProductID).Scan(&farmerID, &status, &mode, &remaining, &fixedPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}

	if farmerID == buyerID {
		return httperr.Respond(c, httperr.Forbiddenf("own_listing", "you cannot order your own listing"))
	}
	if mode != listing.ModeFixedPrice {
		return httperr.Respond(c, httperr.Conflictf("invalid_state", "listing is not sold at a fixed price"))
	}
	if status != listing.StatusActive {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing is %q and not accepting orders", status))
	}
	if fixedPrice == nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "listing has no price"))
	}
	if req.QuantityKg > remaining {
		return httperr.Respond(c, httperr.Conflictf("insufficient_stock",
			"only %.0fkg available", remaining))
	}
	minKg := config.Get().Market.MinOrderKg
	if belowMinimum(req.QuantityKg, remaining, minKg) {
		return httperr.Respond(c, httperr.Validationf("below_minimum",
			"minimum order size is %.0fkg", minKg))
	}

	total := pricing.Total(req.QuantityKg, *fixedPrice)
	commission := pricing.Commission(total, config.Get().Market.CommissionRate)

	orderID := uuid.New().String()
	orderNumber := NewOrderNumber()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, product_id, farmer_id, buyer_id,
			quantity_kg, price_per_kg, total_amount, commission_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		orderID, orderNumber, req.ProductID, farmerID, buyerID,
		req.QuantityKg, *fixedPrice, total, commission)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to create order"))
	}

	// Deplete the lot; clamp at zero and flip to sold on exhaustion
	newRemaining := remaining - req.QuantityKg
	if newRemaining <= 0 {
		newRemaining = 0
	}
	newStatus := status
	if newRemaining == 0 {
		newStatus = listing.StatusSold
	}
	_, err = tx.Exec(ctx, `
		UPDATE products SET quantity_kg = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		req.ProductID, newRemaining, newStatus)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update stock"))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_orders = total_orders + 1 WHERE id = $1`, farmerID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update counters"))
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_orders = total_orders + 1 WHERE id = $1`, buyerID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update counters"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("order_created")
	logger.FromEcho(c).Info("fixed-price order created",
		zap.String("order_id", orderID), zap.String("product_id", req.ProductID),
		zap.Float64("quantity_kg", req.QuantityKg), zap.Float64("total", total))

	_ = alerts.EnqueueOrderCreated(farmerID, orderID, orderNumber, req.QuantityKg, total)

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":          orderID,
		"order_number":      orderNumber,
		"total_amount":      total,
		"commission_amount": commission,
		"message":           "Order placed successfully",
	})
}
