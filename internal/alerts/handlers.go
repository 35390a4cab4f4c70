package alerts

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/logger"
)

// envelopeOnly extracts the common notification envelope from any task
// payload; every payload type embeds it under the same key.
type envelopeOnly struct {
	Envelope Notification `json:"envelope"`
}

// handleNotification persists the task's envelope as an in-app
// notification row.
func handleNotification(ctx context.Context, t *asynq.Task) error {
	var p envelopeOnly
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("malformed notification payload",
			zap.String("task", t.Type()), zap.Error(err))
		// Malformed payloads will never succeed; drop instead of retrying
		return nil
	}

	env := p.Envelope
	_, err := db.Conn.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, link)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		uuid.New().String(), env.UserID, env.Type, env.Title, env.Body, env.Link,
	)
	if err != nil {
		logger.L().Error("failed to persist notification",
			zap.String("task", t.Type()), zap.String("user_id", env.UserID), zap.Error(err))
		return err
	}

	logger.L().Info("notification delivered",
		zap.String("task", t.Type()), zap.String("user_id", env.UserID))
	return nil
}
