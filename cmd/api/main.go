package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/admin"
	"github.com/agrimandi/agrimandi/internal/alerts"
	"github.com/agrimandi/agrimandi/internal/auth"
	"github.com/agrimandi/agrimandi/internal/bidding"
	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/db"
	"github.com/agrimandi/agrimandi/internal/listing"
	"github.com/agrimandi/agrimandi/internal/logger"
	"github.com/agrimandi/agrimandi/internal/metrics"
	appmw "github.com/agrimandi/agrimandi/internal/middleware"
	"github.com/agrimandi/agrimandi/internal/orders"
	"github.com/agrimandi/agrimandi/internal/user"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.Server.Env); err != nil {
		panic(err)
	}
	defer logger.L().Sync()

	db.Init()
	alerts.Init()

	e := echo.New()
	e.HideBanner = true
	e.Validator = appmw.NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())

	// Probes and metrics
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})
	e.GET("/metrics", metrics.Handler())

	// Public auth routes, rate limited against credential stuffing
	authGroup := e.Group("")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	authGroup.POST("/signup", auth.Signup)
	authGroup.POST("/login", auth.Login)

	// Public discovery
	e.GET("/listings", listing.BrowseListings)
	e.GET("/listings/:id", listing.GetListing)
	e.GET("/users/:id/profile", user.GetPublicProfile)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWTMiddleware)

	g.GET("/me", auth.Me)
	g.GET("/profile", user.GetProfile)
	g.PATCH("/profile", user.UpdateProfile)

	// Listings (farmer side)
	g.POST("/listings", listing.CreateListing, appmw.RequireRoles("farmer"))
	g.GET("/listings/me", listing.MyListings, appmw.RequireRoles("farmer"))
	g.PATCH("/listings/:id", listing.UpdateListing, appmw.RequireRoles("farmer"))
	g.POST("/listings/:id/pause", listing.PauseListing, appmw.RequireRoles("farmer"))
	g.POST("/listings/:id/resume", listing.ResumeListing, appmw.RequireRoles("farmer"))
	g.DELETE("/listings/:id", listing.DeleteListing, appmw.RequireRoles("farmer"))

	// Bidding
	g.POST("/listings/:id/bids", bidding.PlaceBid, appmw.RequireRoles("buyer"))
	g.GET("/listings/:id/bids", bidding.ListBids, appmw.RequireRoles("farmer"))
	g.GET("/bids/me", bidding.MyBids, appmw.RequireRoles("buyer"))
	g.POST("/bids/:id/accept", bidding.AcceptBid, appmw.RequireRoles("farmer"))
	g.POST("/listings/:id/close-bidding", bidding.CloseBidding, appmw.RequireRoles("farmer"))

	// Orders
	g.POST("/orders", orders.CreateFixedPriceOrder, appmw.RequireRoles("buyer"))
	g.GET("/orders", orders.MyOrders)
	g.GET("/orders/:id", orders.GetOrder)
	g.PATCH("/orders/:id/status", orders.UpdateOrderStatus, appmw.RequireRoles("farmer"))
	g.POST("/orders/:id/payment", orders.ProcessPayment, appmw.RequireRoles("buyer"))
	g.POST("/orders/:id/invoice", orders.RegenerateInvoice)
	g.POST("/orders/:id/review", orders.CreateReview, appmw.RequireRoles("buyer"))
	g.GET("/orders/:id/review", orders.GetOrderReview)
	g.GET("/earnings", orders.FarmerEarnings, appmw.RequireRoles("farmer"))

	// Notifications
	g.GET("/notifications", alerts.ListNotifications)
	g.POST("/notifications/:id/read", alerts.MarkNotificationRead)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWTMiddleware)
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", admin.GetStats)
	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)
	adminGroup.POST("/users/:id/verify", admin.VerifyUser)
	adminGroup.GET("/listings/pending", listing.PendingListings)
	adminGroup.POST("/listings/:id/approve", listing.ApproveListing)
	adminGroup.POST("/listings/:id/reject", listing.RejectListing)

	logger.L().Info("API server starting", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.L().Fatal("server error", zap.Error(err))
	}
}
