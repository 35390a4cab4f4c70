package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
)

// PlatformStats is the admin dashboard snapshot. Everything is computed
// on demand; the numbers are small enough that caching is not worth it.
type PlatformStats struct {
	TotalFarmers     int     `json:"total_farmers"`
	TotalBuyers      int     `json:"total_buyers"`
	ActiveListings   int     `json:"active_listings"`
	PendingApprovals int     `json:"pending_approvals"`
	TotalOrders      int     `json:"total_orders"`
	DeliveredOrders  int     `json:"delivered_orders"`
	GrossVolume      float64 `json:"gross_volume"`
	CommissionEarned float64 `json:"commission_earned"`
}

// GetStats returns platform-wide totals for the admin dashboard.
func GetStats(c echo.Context) error {
	ctx := context.Background()

	var s PlatformStats
	err := db.Conn.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'farmer'),
			(SELECT COUNT(*) FROM users WHERE role = 'buyer'),
			(SELECT COUNT(*) FROM products WHERE status = 'active'),
			(SELECT COUNT(*) FROM products WHERE status = 'pending_approval'),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE order_status = 'delivered'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'completed'),
			(SELECT COALESCE(SUM(commission_amount), 0) FROM orders WHERE payment_status = 'completed')`).
		Scan(&s.TotalFarmers, &s.TotalBuyers, &s.ActiveListings, &s.PendingApprovals,
			&s.TotalOrders, &s.DeliveredOrders, &s.GrossVolume, &s.CommissionEarned)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to compute stats"))
	}

	return c.JSON(http.StatusOK, s)
}
