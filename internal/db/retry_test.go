package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "connection reset" }
func (fakeNetErr) Timeout() bool   { return true }
func (fakeNetErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bid_too_low")))

	assert.True(t, IsTransient(fakeNetErr{}))

	assert.True(t, IsTransient(&pgconn.PgError{Code: "08006"})) // connection failure
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40P01"})) // deadlock
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40001"})) // serialization
	assert.True(t, IsTransient(&pgconn.PgError{Code: "57P03"})) // cannot connect now

	// Lock timeout and statement cancellation stay permanent: losing a
	// race on a product row must surface, not silently re-run.
	assert.False(t, IsTransient(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "57014"}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
}

func TestWithRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: "23505"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "test", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryGivesUpAfterBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})

	require.Error(t, err)
	// initial attempt plus the configured retries
	assert.Equal(t, 3, calls)
}
