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
)

// Profile is the caller's own account view. Password never leaves the store.
type Profile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	Phone              *string   `json:"phone,omitempty"`
	Region             *string   `json:"region,omitempty"`
	VerificationStatus string    `json:"verification_status"`
	IsActive           bool      `json:"is_active"`
	TotalOrders        int       `json:"total_orders"`
	CreatedAt          time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone  string `json:"phone" validate:"omitempty,min=7,max=20"`
	Region string `json:"region" validate:"omitempty,max=100"`
}

// GetProfile returns the caller's own profile.
func GetProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	var p Profile
	err := db.Conn.QueryRow(ctx, `
		SELECT id, name, email, role, phone, region, verification_status,
		       is_active, total_orders, created_at
		FROM users WHERE id = $1`, userID).
		Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Phone, &p.Region,
			&p.VerificationStatus, &p.IsActive, &p.TotalOrders, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return httperr.Respond(c, httperr.NotFoundf("user_not_found", "user not found"))
		}
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch profile"))
	}

	return c.JSON(http.StatusOK, p)
}

// UpdateProfile changes the caller's contact details. Email and role are
// fixed at signup.
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_request", "invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return httperr.Respond(c, httperr.Validationf("invalid_profile", "profile fields out of range"))
	}
	if req.Name == "" && req.Phone == "" && req.Region == "" {
		return httperr.Respond(c, httperr.Validationf("empty_update", "nothing to update"))
	}

	ctx := context.Background()
	_, err := db.Conn.Exec(ctx, `
		UPDATE users SET
			name   = COALESCE(NULLIF($2, ''), name),
			phone  = COALESCE(NULLIF($3, ''), phone),
			region = COALESCE(NULLIF($4, ''), region)
		WHERE id = $1`, userID, req.Name, req.Phone, req.Region)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update profile"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated"})
}
