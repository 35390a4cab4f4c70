package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
	"github.com/agrimandi/agrimandi/internal/logger"
)

type userRow struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	Region             *string `json:"region,omitempty"`
	VerificationStatus string  `json:"verification_status"`
	IsActive           bool    `json:"is_active"`
	TotalOrders        int     `json:"total_orders"`
}

// ListUsers returns accounts for moderation, optionally filtered by role.
func ListUsers(c echo.Context) error {
	ctx := context.Background()

	query := `SELECT id, name, email, role, region, verification_status, is_active, total_orders
		FROM users`
	args := []interface{}{}
	if role := c.QueryParam("role"); role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to list users"))
	}
	defer rows.Close()

	users := []userRow{}
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Region,
			&u.VerificationStatus, &u.IsActive, &u.TotalOrders); err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to read user"))
		}
		users = append(users, u)
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// SuspendUser deactivates an account. Suspended users cannot log in;
// their existing listings and orders are untouched.
func SuspendUser(c echo.Context) error {
	return setActive(c, false, "User suspended")
}

// ActivateUser reinstates a suspended account.
func ActivateUser(c echo.Context) error {
	return setActive(c, true, "User activated")
}

func setActive(c echo.Context, active bool, msg string) error {
	ctx := context.Background()
	targetID := c.Param("id")

	tag, err := db.Conn.Exec(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1 AND role <> 'admin'`,
		targetID, active)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update user"))
	}
	if tag.RowsAffected() == 0 {
		return httperr.Respond(c, httperr.NotFoundf("user_not_found", "user not found"))
	}

	logger.FromEcho(c).Info("user moderation",
		zap.String("target_id", targetID), zap.Bool("active", active))

	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// VerifyUser marks an account as identity-verified. Verification is a
// one-way badge shown on public profiles.
func VerifyUser(c echo.Context) error {
	ctx := context.Background()
	targetID := c.Param("id")

	tag, err := db.Conn.Exec(ctx,
		`UPDATE users SET verification_status = 'verified' WHERE id = $1`, targetID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to verify user"))
	}
	if tag.RowsAffected() == 0 {
		return httperr.Respond(c, httperr.NotFoundf("user_not_found", "user not found"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User verified"})
}
