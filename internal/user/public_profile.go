package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/pricing"
)

// PublicProfile is what other marketplace members see about a user.
// Ratings are computed from reviews at read time, not cached.
type PublicProfile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Region             *string   `json:"region,omitempty"`
	VerificationStatus string    `json:"verification_status"`
	TotalOrders        int       `json:"total_orders"`
	ReviewCount        int       `json:"review_count"`
	AverageRating      *float64  `json:"average_rating,omitempty"`
	ActiveListings     int       `json:"active_listings,omitempty"`
	MemberSince        time.Time `json:"member_since"`
}

// GetPublicProfile returns a member's public card. Suspended accounts
// are hidden from everyone but admins.
func GetPublicProfile(c echo.Context) error {
	ctx := context.Background()
	targetID := c.Param("id")

	var p PublicProfile
	var isActive bool
	err := db.Conn.QueryRow(ctx, `
		SELECT id, name, role, region, verification_status, is_active,
		       total_orders, created_at
		FROM users WHERE id = $1`, targetID).
		Scan(&p.ID, &p.Name, &p.Role, &p.Region, &p.VerificationStatus,
			&isActive, &p.TotalOrders, &p.MemberSince)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("user_not_found", "user not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch profile"))
	}

	callerRole, _ := c.Get("role").(string)
	if !isActive && callerRole != "admin" {
		return httperr.Respond(c, httperr.NotFoundf("user_not_found", "user not found"))
	}

	if p.Role == "farmer" {
		var avg *float64
		err = db.Conn.QueryRow(ctx,
			`SELECT COUNT(*), AVG(rating) FROM reviews WHERE farmer_id = $1`, targetID).
			Scan(&p.ReviewCount, &avg)
		if err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch ratings"))
		}
		if avg != nil {
			rounded := pricing.Round2(*avg)
			p.AverageRating = &rounded
		}

		err = db.Conn.QueryRow(ctx,
			`SELECT COUNT(*) FROM products WHERE farmer_id = $1 AND status = 'active'`, targetID).
			Scan(&p.ActiveListings)
		if err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch listings"))
		}
	}

	return c.JSON(http.StatusOK, p)
}
