// Pricing service entry point: wires the rule stores, rate source chain
// and quote lock manager behind the HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"pricefx/internal/forex"
	"pricefx/internal/handler"
	"pricefx/internal/middleware"
	"pricefx/internal/pricing"
	"pricefx/internal/quotelock"
	"pricefx/internal/repository/postgres"
	"pricefx/pkg/config"
	"pricefx/pkg/logger"
	"pricefx/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("pricing-service")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Pricing Service", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Repositories
	pricingRuleRepo := postgres.NewPricingRuleRepository(db)
	fxRuleRepo := postgres.NewFxRuleRepository(db)
	quoteRepo := postgres.NewQuoteRepository(db)
	marketRateRepo := postgres.NewMarketRateRepository(db)

	// Market rate source chain: stored rates, external provider, snapshot cache
	var provider forex.RateSource
	if cfg.Rates.ProviderURL != "" {
		provider = forex.NewHTTPProvider(cfg.Rates.ProviderURL, &http.Client{
			Timeout: cfg.Rates.ProviderTimeout,
		})
	}
	rateSource := forex.NewChainSource(
		marketRateRepo,
		provider,
		forex.NewRedisSnapshotCache(redisClient),
		cfg.Rates.CacheTTL,
		cfg.Rates.ProviderTimeout,
		log,
	)

	// Services
	locks := quotelock.NewService(quoteRepo, cfg.Quote.LockTTL, log)
	pricingService := pricing.NewService(pricingRuleRepo, fxRuleRepo, rateSource, locks, log)

	// Handlers
	val := validator.New()
	quoteHandler := handler.NewQuoteHandler(pricingService, locks, val, log)
	ratesHandler := handler.NewRatesHandler(rateSource, []handler.Pair{
		{From: "EUR", To: "XOF"},
		{From: "EUR", To: "XAF"},
		{From: "USD", To: "XOF"},
		{From: "EUR", To: "GHS"},
		{From: "EUR", To: "NGN"},
	}, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB global cap
	r.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window).Limit)

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes/preview", quoteHandler.Preview).Methods("POST")
	api.HandleFunc("/quotes/lock", quoteHandler.Lock).Methods("POST")
	api.HandleFunc("/quotes/{id}", quoteHandler.Get).Methods("GET")
	api.HandleFunc("/rates/{from}/{to}", ratesHandler.GetRate).Methods("GET")

	// WebSocket for live market rates
	api.HandleFunc("/rates/ws", ratesHandler.Stream)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Pricing service started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down pricing service...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Pricing service forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Pricing service stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"pricing"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"pricing"}`))
	}
}
