package alerts

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/httperr"
)

type storedNotification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Link      *string    `json:"link,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// ListNotifications - the authenticated user's notifications, newest first
func ListNotifications(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(), `
		SELECT id, type, title, COALESCE(body, ''), link, created_at, read_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 100`, userID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to fetch notifications"))
	}
	defer rows.Close()

	items := []storedNotification{}
	for rows.Next() {
		var n storedNotification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.Link, &n.CreatedAt, &n.ReadAt); err != nil {
			return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to parse notification"))
		}
		items = append(items, n)
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkNotificationRead - stamp a notification as read
func MarkNotificationRead(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	notificationID := c.Param("id")

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE notifications SET read_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		notificationID, userID)
	if err != nil {
		return httperr.Respond(c, httperr.Upstreamf("store_error", "failed to update notification"))
	}
	if res.RowsAffected() == 0 {
		return httperr.Respond(c, httperr.NotFoundf("notification_not_found",
			"notification not found or already read"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked read"})
}
