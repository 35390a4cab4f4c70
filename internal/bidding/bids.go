package bidding

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
)

// ListBids - farmer views the bid ledger for one of their listings.
// Lock-free read; the ledger is authoritative even if the product's
// cached current_highest_bid lags a commit.
func ListBids(c echo.Context) error {
	farmerID, _ := c.Get("user_id").(string)
	productID := c.Param("id")

	ctx := context.Background()

	var ownerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT farmer_id FROM products WHERE id = $1`, productID).Scan(&ownerID)
	if err != nil {
		return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
	}
	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this listing"))
	}

	rows, err := db.Conn.Query(ctx, `
		SELECT id, product_id, buyer_id, amount, status, created_at, updated_at
		FROM bids WHERE product_id = $1 ORDER BY amount DESC`, productID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch bids"))
	}
	defer rows.Close()

	bids := []Bid{}
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BuyerID, &b.Amount, &b.Status,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to parse bid"))
		}
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}

// MyBids - buyer views their own bids across listings
func MyBids(c echo.Context) error {
	buyerID, _ := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(), `
		SELECT b.id, b.product_id, b.buyer_id, b.amount, b.status, b.created_at, b.updated_at
		FROM bids b
		WHERE b.buyer_id = $1 ORDER BY b.updated_at DESC`, buyerID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch bids"))
	}
	defer rows.Close()

	bids := []Bid{}
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BuyerID, &b.Amount, &b.Status,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to parse bid"))
		}
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}
