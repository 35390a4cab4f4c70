package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/logger"
)

// promote_admin sets a user's role to 'admin' by email.
// Usage:
//   go run cmd/adminutil/promote_admin/main.go -email user@example.com
func main() {
	email := flag.String("email", "", "Email of the user to promote to admin")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/promote_admin/main.go -email user@example.com")
	}

	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel, cfg.Server.Env); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	db.Init()

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET role = 'admin' WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to promote user to admin: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no user found with email: %s", *email)
	}

	fmt.Printf("User %s promoted to admin.\n", *email)
}
