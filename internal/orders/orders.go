package orders

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
)

const orderColumns = `id, order_number, product_id, farmer_id, buyer_id, quantity_kg,
	price_per_kg, total_amount, commission_amount, order_status, payment_status,
	payment_method, transaction_id, invoice_path, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.ProductID, &o.FarmerID, &o.BuyerID,
		&o.QuantityKg, &o.PricePerKg, &o.TotalAmount, &o.CommissionAmount,
		&o.OrderStatus, &o.PaymentStatus, &o.PaymentMethod, &o.TransactionID,
		&o.InvoicePath, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// GetOrder returns a single order to either of its two parties.
func GetOrder(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	row := db.Conn.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, c.Param("id"))

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("order_not_found", "order not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch order"))
	}
	if o.BuyerID != userID && o.FarmerID != userID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "this order is not yours"))
	}

	return c.JSON(http.StatusOK, o)
}

// MyOrders lists the caller's orders, newest first. Buyers see their
// purchases, farmers their sales; the role claim decides which side.
func MyOrders(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	party := "buyer_id"
	if role == "farmer" {
		party = "farmer_id"
	}

	ctx := context.Background()
	rows, err := db.Conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+party+` = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to list orders"))
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to read order"))
		}
		orders = append(orders, o)
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "count": len(orders)})
}

// FarmerEarnings summarizes a farmer's settled revenue. Only delivered
// orders count; commission is what the platform kept, net is what the
// farmer receives.
func FarmerEarnings(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	var deliveredCount int
	var gross, commission float64
	err := db.Conn.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(commission_amount), 0)
		FROM orders
		WHERE farmer_id = $1 AND order_status = $2`,
		farmerID, StatusDelivered).Scan(&deliveredCount, &gross, &commission)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to compute earnings"))
	}

	var pendingCount int
	var pendingAmount float64
	err = db.Conn.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE farmer_id = $1 AND order_status NOT IN ($2, $3)`,
		farmerID, StatusDelivered, StatusCancelled).Scan(&pendingCount, &pendingAmount)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to compute earnings"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"delivered_orders": deliveredCount,
		"gross_revenue":    gross,
		"commission_paid":  commission,
		"net_earnings":     gross - commission,
		"inflight_orders":  pendingCount,
		"inflight_amount":  pendingAmount,
	})
}
