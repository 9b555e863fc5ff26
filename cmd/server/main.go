package main

import (
	"context"
	"log"
	"net/http"

	"freshcart/internal/cart"
	"freshcart/internal/config"
	"freshcart/internal/coupon"
	"freshcart/internal/db"
	"freshcart/internal/engine"
	"freshcart/internal/httpserver"
	"freshcart/internal/logger"
	"freshcart/internal/middleware"
	"freshcart/internal/session"
	"freshcart/internal/store"
	"freshcart/internal/sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	// Snapshot persistence is optional: without a database the cart simply
	// cannot survive a remote outage at bootstrap.
	var snapshots store.Snapshots
	if cfg.DBHost != "" {
		database := db.InitDB(cfg)
		defer database.Close()
		snapshots = store.NewRepository(database)
	}

	sessionID := session.NewSessionID()
	token, err := session.NewToken([]byte(cfg.SessionSecret), sessionID, cfg.SessionTTL)
	if err != nil {
		logger.L().Fatal("failed to mint session token", zap.Error(err))
	}

	client := sync.NewHTTPClient(sync.ClientConfig{
		BaseURL:      cfg.RemoteBaseURL,
		Token:        token,
		Timeout:      cfg.RemoteTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		RetryBackoff: cfg.RetryBackoff,
	})

	eng := engine.New(engine.Params{
		Coupons:   seedCoupons(),
		Client:    client,
		Snapshots: snapshots,
		FeePolicy: cart.FeePolicy{
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
			StandardFee:           cfg.StandardDeliveryFee,
		},
		PageSize: cfg.PageSize,
		Sync: sync.Options{
			Timeout: cfg.RemoteTimeout,
			Limiter: rate.NewLimiter(rate.Limit(cfg.RemoteRate), cfg.RemoteBurst),
		},
	})
	defer eng.Close()

	if err := eng.Bootstrap(context.Background()); err != nil {
		logger.L().Fatal("bootstrap failed", zap.Error(err))
	}

	srv := httpserver.NewServer(eng)
	limiter := middleware.NewRateLimiter(cfg.RemoteRate, cfg.RemoteBurst)

	handler := logger.RequestIDMiddleware(
		middleware.SessionMiddleware([]byte(cfg.SessionSecret))(
			limiter.Middleware(
				middleware.LoggingMiddleware(srv.Router()),
			),
		),
	)

	logger.L().Info("freshcart server running",
		zap.String("port", cfg.AppPort),
		zap.String("session_id", sessionID),
	)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, handler))
}

// seedCoupons is the storefront's launch promotion set.
func seedCoupons() coupon.Catalog {
	return coupon.NewStaticCatalog(
		coupon.Coupon{Code: "FRESH20", Type: coupon.TypePercentage, DiscountValue: 20, MinOrderAmount: 300},
		coupon.Coupon{Code: "FIRST50", Type: coupon.TypeFixed, DiscountValue: 50, MinOrderAmount: 200},
		coupon.Coupon{Code: "SAVE100", Type: coupon.TypeFixed, DiscountValue: 100, MinOrderAmount: 1000},
	)
}
