package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/logger"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and bootstraps the schema
func Init() {
	cfg := config.Get()

	var err error
	Conn, err = pgxpool.New(context.Background(), cfg.DB.DSN())
	if err != nil {
		logger.L().Fatal("unable to connect to database", zap.Error(err))
	}

	err = WithRetry(context.Background(), "ping", func(ctx context.Context) error {
		return Conn.Ping(ctx)
	})
	if err != nil {
		logger.L().Fatal("unable to ping database", zap.Error(err))
	}

	logger.L().Info("connected to postgres",
		zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.DBName))

	ensureUsersTable()
	ensureProductsTable()
	ensureBidsTable()
	ensureOrdersTable()
	ensureReviewsTable()
	ensureNotificationsTable()
}

// ensureUsersTable creates the users table if missing. Farmers, buyers
// and admins share one table, distinguished by role.
func ensureUsersTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('farmer','buyer','admin')),
			phone TEXT,
			region TEXT,
			verification_status TEXT NOT NULL DEFAULT 'unverified'
				CHECK (verification_status IN ('unverified','verified')),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			total_orders INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		logger.L().Error("failed to ensure users table", zap.Error(err))
	}
}

// ensureProductsTable creates the products table. The product row is the
// mutual-exclusion unit for every bidding and purchase decision, so all
// read-then-write operations lock it with FOR UPDATE.
func ensureProductsTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			farmer_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			quantity_kg NUMERIC(12,2) NOT NULL CHECK (quantity_kg >= 0),
			selling_mode TEXT NOT NULL CHECK (selling_mode IN ('fixed_price','bidding')),
			fixed_price NUMERIC(12,2),
			base_price NUMERIC(12,2),
			current_highest_bid NUMERIC(12,2),
			status TEXT NOT NULL DEFAULT 'pending_approval' CHECK (status IN (
				'pending_approval','active','paused','rejected','bidding_closed','sold'
			)),
			quality_grade TEXT,
			organic BOOLEAN NOT NULL DEFAULT FALSE,
			failure_reason TEXT,
			failure_suggestions TEXT,
			image_url TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_products_farmer ON products(farmer_id);
		CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category) WHERE status = 'active';
	`)
	if err != nil {
		logger.L().Error("failed to ensure products table", zap.Error(err))
	}
}

// ensureBidsTable creates the bids table. The partial unique index backs
// the one-active-bid-per-buyer rule at the store level.
func ensureBidsTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS bids (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			status TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active','outbid','won','rejected')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bids_product ON bids(product_id);
		CREATE INDEX IF NOT EXISTS idx_bids_buyer ON bids(buyer_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_one_active_per_buyer
			ON bids(product_id, buyer_id) WHERE status = 'active';
	`)
	if err != nil {
		logger.L().Error("failed to ensure bids table", zap.Error(err))
	}
}

// ensureOrdersTable creates the orders table. Orders are the durable
// settlement record and are never deleted.
func ensureOrdersTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			product_id UUID NOT NULL REFERENCES products(id),
			farmer_id UUID NOT NULL REFERENCES users(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			quantity_kg NUMERIC(12,2) NOT NULL CHECK (quantity_kg > 0),
			price_per_kg NUMERIC(12,2) NOT NULL,
			total_amount NUMERIC(14,2) NOT NULL,
			commission_amount NUMERIC(14,2) NOT NULL,
			order_status TEXT NOT NULL DEFAULT 'pending' CHECK (order_status IN (
				'pending','confirmed','preparing','ready','delivered','cancelled'
			)),
			payment_status TEXT NOT NULL DEFAULT 'pending'
				CHECK (payment_status IN ('pending','completed')),
			payment_method TEXT,
			transaction_id TEXT,
			invoice_path TEXT,
			delivered_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_orders_farmer ON orders(farmer_id);
		CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id);
		CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id);
	`)
	if err != nil {
		logger.L().Error("failed to ensure orders table", zap.Error(err))
	}
}

// ensureReviewsTable creates the reviews table. The unique order_id
// backs the one-review-per-order idempotency guard.
func ensureReviewsTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL UNIQUE REFERENCES orders(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			farmer_id UUID NOT NULL REFERENCES users(id),
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		logger.L().Error("failed to ensure reviews table", zap.Error(err))
	}
}

// ensureNotificationsTable creates the notifications table for in-app alerts
func ensureNotificationsTable() {
	_, err := Conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			link TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			read_at TIMESTAMP WITH TIME ZONE
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
	`)
	if err != nil {
		logger.L().Error("failed to ensure notifications table", zap.Error(err))
	}
}
