package listing

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/logger"
)

const productColumns = `
	id, farmer_id, title, description, category, quantity_kg, selling_mode,
	fixed_price, base_price, current_highest_bid, status, quality_grade,
	organic, failure_reason, failure_suggestions, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var description, qualityGrade, imageURL *string
	err := row.Scan(&p.ID, &p.FarmerID, &p.Title, &description, &p.Category,
		&p.QuantityKg, &p.SellingMode, &p.FixedPrice, &p.BasePrice,
		&p.CurrentHighestBid, &p.Status, &qualityGrade, &p.Organic,
		&p.FailureReason, &p.FailureSuggestions, &imageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if description != nil {
		p.Description = *description
	}
	if qualityGrade != nil {
		p.QualityGrade = *qualityGrade
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	return p, nil
}

// CreateListing - farmer lists a new product; it starts pending approval
func CreateListing(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(CreateListingRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid listing data"))
	}

	// Exactly one price field, matching the selling mode
	switch req.SellingMode {
	case ModeFixedPrice:
		if req.FixedPrice <= 0 || req.BasePrice != 0 {
			return httperr.Respond(c, httperr.Validationf("invalid_price",
				"fixed_price listings require fixed_price and no base_price"))
		}
	case ModeBidding:
		if req.BasePrice <= 0 || req.FixedPrice != 0 {
			return httperr.Respond(c, httperr.Validationf("invalid_price",
				"bidding listings require base_price and no fixed_price"))
		}
	}

	ctx := context.Background()
	productID := uuid.New().String()

	var fixedPrice, basePrice *float64
	if req.SellingMode == ModeFixedPrice {
		fixedPrice = &req.FixedPrice
	} else {
		basePrice = &req.BasePrice
	}

	_, err := db.Conn.Exec(ctx, `
		INSERT INTO products (id, farmer_id, title, description, category, quantity_kg,
			selling_mode, fixed_price, base_price, status, quality_grade, organic, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending_approval', $10, $11, $12)`,
		productID, farmerID, req.Title, req.Description, req.Category, req.QuantityKg,
		req.SellingMode, fixedPrice, basePrice, req.QualityGrade, req.Organic, req.ImageURL,
	)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to create listing"))
	}

	logger.FromEcho(c).Info("listing created",
		zap.String("product_id", productID), zap.String("farmer_id", farmerID),
		zap.String("mode", req.SellingMode))

	return c.JSON(http.StatusCreated, echo.Map{
		"product_id": productID,
		"status":     StatusPendingApproval,
		"message":    "Listing created. Awaiting admin approval.",
	})
}

// BrowseListings - public discovery of active listings, lock-free reads.
// Cached fields like current_highest_bid may be slightly stale between
// commits.
func BrowseListings(c echo.Context) error {
	ctx := context.Background()

	query := `SELECT ` + productColumns + ` FROM products WHERE status = 'active'`
	args := []interface{}{}

	if category := c.QueryParam("category"); category != "" {
		args = append(args, category)
		query += ` AND category = $1`
	}
	if mode := c.QueryParam("selling_mode"); mode == ModeFixedPrice || mode == ModeBidding {
		args = append(args, mode)
		query += ` AND selling_mode = $` + strconv.Itoa(len(args))
	}
	if organic := c.QueryParam("organic"); organic == "true" {
		query += ` AND organic = TRUE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := db.Conn.Query(ctx, query, args...)
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

// GetListing - fetch a single product by id
func GetListing(c echo.Context) error {
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_id", "invalid product id"))
	}

	p, err := scanProduct(db.Conn.QueryRow(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}

	return c.JSON(http.StatusOK, p)
}

// MyListings - farmer's own listings in any status
func MyListings(c echo.Context) error {
	farmerID, _ := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE farmer_id = $1 ORDER BY created_at DESC`,
		farmerID)
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

// UpdateListing - farmer edits a listing. Repricing a bidding product
// under live bids would silently invalidate every bidder's assumption,
// so edits are rejected with Conflict while active bids exist.
func UpdateListing(c echo.Context) error {
	farmerID, _ := c.Get("user_id").(string)
	productID := c.Param("id")

	req := new(UpdateListingRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid update data"))
	}

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var ownerID, status, mode string
	err = tx.QueryRow(ctx,
		`SELECT farmer_id, status, selling_mode FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&ownerID, &status, &mode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}
	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this listing"))
	}
	if status != StatusActive && status != StatusPaused && status != StatusPendingApproval {
		return httperr.Respond(c, httperr.Conflictf("not_editable",
			"listing in status %q cannot be edited", status))
	}

	if mode == ModeBidding && (req.BasePrice != nil || req.QuantityKg != nil) {
		var activeBids int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM bids WHERE product_id = $1 AND status = 'active'`,
			productID).Scan(&activeBids); err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to check bids"))
		}
		if activeBids > 0 {
			return httperr.Respond(c, httperr.Conflictf("active_bids_exist",
				"cannot change price or quantity while %d active bids exist; close bidding first", activeBids))
		}
	}
	if mode == ModeFixedPrice && req.BasePrice != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_price",
			"fixed_price listings have no base_price"))
	}
	if mode == ModeBidding && req.FixedPrice != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_price",
			"bidding listings have no fixed_price"))
	}

	_, err = tx.Exec(ctx, `
		UPDATE products SET
			title = COALESCE(NULLIF($2, ''), title),
			description = COALESCE(NULLIF($3, ''), description),
			quantity_kg = COALESCE($4, quantity_kg),
			fixed_price = COALESCE($5, fixed_price),
			base_price = COALESCE($6, base_price),
			quality_grade = COALESCE(NULLIF($7, ''), quality_grade),
			image_url = COALESCE(NULLIF($8, ''), image_url),
			updated_at = NOW()
		WHERE id = $1`,
		productID, req.Title, req.Description, req.QuantityKg,
		req.FixedPrice, req.BasePrice, req.QualityGrade, req.ImageURL,
	)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update listing"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Listing updated"})
}

// PauseListing - farmer pauses an active listing
func PauseListing(c echo.Context) error {
	return toggleListing(c, StatusActive, StatusPaused, "Listing paused")
}

// ResumeListing - farmer reactivates a paused listing
func ResumeListing(c echo.Context) error {
	return toggleListing(c, StatusPaused, StatusActive, "Listing resumed")
}

func toggleListing(c echo.Context, from, to, message string) error {
	farmerID, _ := c.Get("user_id").(string)
	productID := c.Param("id")

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE products SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND farmer_id = $2 AND status = $4`,
		productID, farmerID, to, from)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update status"))
	}
	if res.RowsAffected() == 0 {
		return httperr.Respond(c, httperr.Conflictf("invalid_state",
			"listing not found, not yours, or not in %q state", from))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// DeleteListing - permitted only while no bids and no orders reference
// the product; otherwise Conflict.
func DeleteListing(c echo.Context) error {
	farmerID, _ := c.Get("user_id").(string)
	productID := c.Param("id")

	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "transaction start failed"))
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT farmer_id FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("product_not_found", "product not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch product"))
	}
	if ownerID != farmerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you do not own this listing"))
	}

	var bids, orders int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE product_id = $1`, productID).Scan(&bids); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to check bids"))
	}
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE product_id = $1`, productID).Scan(&orders); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to check orders"))
	}
	if bids > 0 || orders > 0 {
		return httperr.Respond(c, httperr.Conflictf("listing_in_use",
			"listing has %d bids and %d orders and cannot be deleted", bids, orders))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to delete listing"))
	}

	if err = tx.Commit(ctx); err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "commit failed"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Listing deleted"})
}
