package orders

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/alerts"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/logger"
	"github.com/agrimandi/agrimandi/internal/metrics"
)

// UpdateOrderStatus - farmer advances an order one step along the fixed
// sequence, or cancels it. Skipping steps is rejected; delivered stamps
// the timestamp used for earnings reporting.
func UpdateOrderStatus(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")

	req := new(UpdateStatusRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_status", "unknown order status"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var ownerID, current, buyerID string
	err = tx.QueryRow(ctx,
		`SELECT farmer_id, order_status, buyer_id FROM orders WHERE id = $1 FOR UPDATE`,
		orderID).Scan(&ownerID, &current, &buyerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("order_not_found", "order not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch order"))
	}
	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this order"))
	}

	if !ValidTransition(current, req.Status) {
		switch next := NextStatus(current); {
		case current == StatusCancelled:
			return httperr.Respond(c, httperr.Conflictf("invalid_transition",
				"order is cancelled and cannot change status"))
		case next == "":
			return httperr.Respond(c, httperr.Conflictf("invalid_transition",
				"order is %q; only cancellation is possible", current))
		default:
			return httperr.Respond(c, httperr.Conflictf("invalid_transition",
				"order is %q; the next status is %q (or cancelled)", current, next))
		}
	}

	if req.Status == StatusDelivered {
		_, err = tx.Exec(ctx, `
			UPDATE orders SET order_status = $2, delivered_at = NOW(), updated_at = NOW()
			WHERE id = $1`, orderID, req.Status)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE orders SET order_status = $2, updated_at = NOW() WHERE id = $1`,
			orderID, req.Status)
	}
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update status"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("order_" + req.Status)
	logger.FromEcho(c).Info("order status updated",
		zap.String("order_id", orderID), zap.String("from", current), zap.String("to", req.Status))

	_ = alerts.EnqueueOrderStatusChanged(buyerID, orderID, req.Status)

	return c.JSON(http.StatusOK, echo.Map{"message": "Order status updated", "status": req.Status})
}
