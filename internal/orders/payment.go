package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/alerts"
	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/invoice"
	"github.com/agrimandi/agrimandi/internal/logger"
	"github.com/agrimandi/agrimandi/internal/metrics"
)

func newTransactionID() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("TXN-%s-%s", time.Now().Format("20060102150405"), hex.EncodeToString(buf))
}

// ProcessPayment marks a pending order as paid. Paying an already-paid
// order is reported as such without touching the stored transaction.
// The invoice is rendered after the commit: a render failure leaves the
// payment completed and is repaired via RegenerateInvoice.
func ProcessPayment(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")

	req := new(PaymentRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_method", "unsupported payment method"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var ord Order
	err = tx.QueryRow(ctx, `
		SELECT id, order_number, product_id, farmer_id, buyer_id, quantity_kg,
		       price_per_kg, total_amount, commission_amount, payment_status
		FROM orders WHERE id = $1 FOR UPDATE`, orderID).
		Scan(&ord.ID, &ord.OrderNumber, &ord.ProductID, &ord.FarmerID, &ord.BuyerID,
			&ord.QuantityKg, &ord.PricePerKg, &ord.TotalAmount, &ord.CommissionAmount,
			&ord.PaymentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("order_not_found", "order not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch order"))
	}
	if ord.BuyerID != buyerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you did not place this order"))
	}
	if ord.PaymentStatus == PaymentCompleted {
		return httperr.Respond(c, httperr.AlreadyDonef("already_paid", "this order is already paid"))
	}

	txnID := newTransactionID()
	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2, payment_method = $3, transaction_id = $4, updated_at = NOW()
		WHERE id = $1`, orderID, PaymentCompleted, req.Method, txnID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to record payment"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	metrics.CountEvent("payment_completed")
	logger.FromEcho(c).Info("payment processed",
		zap.String("order_id", orderID), zap.String("transaction_id", txnID))

	// Payment is committed; everything past this point is best-effort.
	path, rerr := renderInvoice(ctx, orderID, txnID, req.Method, ord)
	if rerr != nil {
		logger.FromEcho(c).Error("invoice render failed, payment kept",
			zap.String("order_id", orderID), zap.Error(rerr))
	} else {
		_ = alerts.EnqueueInvoiceReady(buyerID, orderID, path)
	}

	_ = alerts.EnqueuePaymentReceived(ord.FarmerID, orderID, txnID, ord.TotalAmount)

	resp := echo.Map{
		"message":        "Payment successful",
		"transaction_id": txnID,
		"payment_status": PaymentCompleted,
	}
	if path != "" {
		resp["invoice_path"] = path
	}
	return c.JSON(http.StatusOK, resp)
}

// RegenerateInvoice re-renders the invoice for a paid order. This is
// the reconciliation path for orders whose post-payment render failed;
// calling it on an order that already has an invoice just rewrites it.
func RegenerateInvoice(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")
	ctx := context.Background()

	var ord Order
	var method, txnID *string
	err := db.Conn.QueryRow(ctx, `
		SELECT id, order_number, product_id, farmer_id, buyer_id, quantity_kg,
		       price_per_kg, total_amount, commission_amount, payment_status,
		       payment_method, transaction_id
		FROM orders WHERE id = $1`, orderID).
		Scan(&ord.ID, &ord.OrderNumber, &ord.ProductID, &ord.FarmerID, &ord.BuyerID,
			&ord.QuantityKg, &ord.PricePerKg, &ord.TotalAmount, &ord.CommissionAmount,
			&ord.PaymentStatus, &method, &txnID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("order_not_found", "order not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch order"))
	}
	if ord.BuyerID != userID && ord.FarmerID != userID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "this order is not yours"))
	}
	if ord.PaymentStatus != PaymentCompleted {
		return httperr.Respond(c, httperr.Conflictf("not_paid", "invoices exist only for paid orders"))
	}

	m, t := "", ""
	if method != nil {
		m = *method
	}
	if txnID != nil {
		t = *txnID
	}

	path, err := renderInvoice(ctx, orderID, t, m, ord)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("invoice_error", "failed to render invoice"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Invoice regenerated", "invoice_path": path})
}

// renderInvoice fetches the display names, writes the document and
// persists its path on the order.
func renderInvoice(ctx context.Context, orderID, txnID, method string, ord Order) (string, error) {
	var farmerName, buyerName, productTitle string
	err := db.Conn.QueryRow(ctx, `
		SELECT f.name, b.name, p.title
		FROM orders o
		JOIN users f ON f.id = o.farmer_id
		JOIN users b ON b.id = o.buyer_id
		JOIN products p ON p.id = o.product_id
		WHERE o.id = $1`, orderID).Scan(&farmerName, &buyerName, &productTitle)
	if err != nil {
		return "", err
	}

	path, err := invoice.Render(config.Get().InvoiceDir, invoice.Data{
		OrderNumber:      ord.OrderNumber,
		TransactionID:    txnID,
		FarmerName:       farmerName,
		BuyerName:        buyerName,
		ProductTitle:     productTitle,
		QuantityKg:       ord.QuantityKg,
		PricePerKg:       ord.PricePerKg,
		TotalAmount:      ord.TotalAmount,
		CommissionAmount: ord.CommissionAmount,
		PaymentMethod:    method,
		IssuedAt:         time.Now(),
	})
	if err != nil {
		return "", err
	}

	_, err = db.Conn.Exec(ctx, `UPDATE orders SET invoice_path = $2, updated_at = NOW() WHERE id = $1`,
		orderID, path)
	if err != nil {
		return "", err
	}
	return path, nil
}
