package listing

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/logger"
)

// ApproveListing - admin moves a pending listing to active
func ApproveListing(c echo.Context) error {
	return moderate(c, StatusActive, "Listing approved")
}

// RejectListing - admin rejects a pending listing
func RejectListing(c echo.Context) error {
	return moderate(c, StatusRejected, "Listing rejected")
}

func moderate(c echo.Context, to, message string) error {
	productID := c.Param("id")

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}

	if !CanTransition(status, to) {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing in status %q cannot move to %q", status, to))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1`,
		productID, to); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update status"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	logger.FromEcho(c).Info("listing moderated",
		zap.String("product_id", productID), zap.String("status", to))

	return c.JSON(http.StatusOK, echo.Map{"message": message, "status": to})
}

// PendingListings - admin queue of listings awaiting approval
func PendingListings(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE status = 'pending_approval' ORDER BY created_at ASC`)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch listings"))
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to parse listing"))
		}
		products = append(products, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}
