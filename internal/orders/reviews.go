package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
)

// Review is a buyer's rating of a delivered order, one per order.
type Review struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	BuyerID   string    `json:"buyer_id"`
	FarmerID  string    `json:"farmer_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// CreateReview lets the buyer rate a delivered order. The unique
// constraint on order_id is the duplicate guard, so a racing second
// submission is reported as already reviewed rather than stored twice.
func CreateReview(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")

	req := new(CreateReviewRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_rating", "rating must be between 1 and 5"))
	}

	ctx := context.Background()

	var ownerID, farmerID, status string
	err := db.Conn.QueryRow(ctx,
		`SELECT buyer_id, farmer_id, order_status FROM orders WHERE id = $1`, orderID).
		Scan(&ownerID, &farmerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("order_not_found", "order not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch order"))
	}
	if ownerID != buyerID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "you did not place this order"))
	}
	if status != StatusDelivered {
		return httperr.Respond(c, httperr.Conflictf("not_delivered", "only delivered orders can be reviewed"))
	}

	review := Review{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		BuyerID:  buyerID,
		FarmerID: farmerID,
		Rating:   req.Rating,
	}
	if req.Comment != "" {
		review.Comment = &req.Comment
	}

	err = db.Conn.QueryRow(ctx, `
		INSERT INTO reviews (id, order_id, buyer_id, farmer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		review.ID, review.OrderID, review.BuyerID, review.FarmerID, review.Rating, review.Comment).
		Scan(&review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httperr.Respond(c, httperr.AlreadyDonef("already_reviewed", "this order already has a review"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to save review"))
	}

	return c.JSON(http.StatusCreated, review)
}

// GetOrderReview returns the review for an order, visible to both parties.
func GetOrderReview(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	var r Review
	err := db.Conn.QueryRow(ctx, `
		SELECT id, order_id, buyer_id, farmer_id, rating, comment, created_at
		FROM reviews WHERE order_id = $1`, c.Param("id")).
		Scan(&r.ID, &r.OrderID, &r.BuyerID, &r.FarmerID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("review_not_found", "no review for this order"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch review"))
	}
	if r.BuyerID != userID && r.FarmerID != userID {
		return httperr.Respond(c, httperr.Forbiddenf("not_owner", "this review is not yours"))
	}

	return c.JSON(http.StatusOK, r)
}
