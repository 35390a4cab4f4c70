package db

import (
	"context"
	"errors"
	"net"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/logger"
)

// SQLSTATE classes retried as transient. Lock timeouts and statement
// cancellation are deliberately absent: a lost race on a product row is
// a business outcome, not a connectivity blip.
const (
	codeConnectionException  = "08"    // connection exception class
	codeDeadlockDetected     = "40P01" // deadlock victim
	codeSerializationFailure = "40001"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
)

// IsTransient reports whether err is a transient store failure worth a
// bounded retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == codeConnectionException {
			return true
		}
		switch pgErr.Code {
		case codeDeadlockDetected, codeSerializationFailure, codeAdminShutdown, codeCannotConnectNow:
			return true
		}
	}

	return pgconn.SafeToRetry(err)
}

// Begin opens a transaction on the shared pool, retrying the connection
// acquisition on transient failures. Once a transaction is open its
// statements run unretried: the engine's locking transactions are not
// safe to replay halfway.
func Begin(ctx context.Context) (pgx.Tx, error) {
	var tx pgx.Tx
	err := WithRetry(ctx, "begin", func(ctx context.Context) error {
		var err error
		tx, err = Conn.Begin(ctx)
		return err
	})
	return tx, err
}

// WithRetry runs op, retrying transient failures with capped exponential
// backoff up to the configured ceiling (default two retries). Business
// failures and lock timeouts surface immediately.
func WithRetry(ctx context.Context, name string, op func(ctx context.Context) error) error {
	cfg := config.Get().Retry

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(cfg.MaxRetries)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		logger.L().Warn("transient store failure, retrying",
			zap.String("op", name), zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, policy)
}
