package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"swingtrade-backend/internal/config"
	httpdelivery "swingtrade-backend/internal/delivery/http"
	"swingtrade-backend/internal/delivery/websocket"
	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/infrastructure/db"
	"swingtrade-backend/internal/infrastructure/fcm"
	"swingtrade-backend/internal/infrastructure/marketdata"
	"swingtrade-backend/internal/infrastructure/universe"
	"swingtrade-backend/internal/repository"
	"swingtrade-backend/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Infrastructure
	provider, err := universe.Load(cfg.UniverseFile)
	if err != nil {
		log.Fatalf("Failed to load universe: %v", err)
	}
	bars := marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketDataTimeout(), cfg.MarketData.Retries)

	var backtestRepo domain.BacktestRepository
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pool, err := db.NewPool(ctx, databaseURL, db.PoolConfigFromEnv())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		backtestRepo = repository.NewPostgresBacktestRepository(pool)
		log.Println("Backtest persistence: postgres")
	} else {
		backtestRepo = repository.NewInMemoryBacktestRepository()
		log.Println("Backtest persistence: in-memory (set DATABASE_URL to persist)")
	}

	fcmClient, err := fcm.NewClient()
	if err != nil {
		log.Printf("FCM disabled: %v", err)
	}

	// 2. Repositories
	screenRepo := repository.NewInMemoryScreenerRepository()
	tokenRepo := repository.NewTokenRepository()

	// 3. Usecases
	screener := usecase.NewScreenerUsecase(screenRepo, bars, provider, tokenRepo, fcmClient, cfg.Rules, usecase.ScreenerConfig{
		Market:      cfg.Screening.Market,
		Lookback:    cfg.Screening.Lookback,
		Concurrency: cfg.Screening.Concurrency,
		Interval:    cfg.ScreeningInterval(),
	})
	backtest := usecase.NewBacktestUsecase(bars)

	if cfg.Screening.Enabled {
		go screener.Run(ctx)
	}

	// 4. Delivery
	wsHandler := websocket.NewHandler(screenRepo, cfg.ScreeningInterval())
	screeningHandler := httpdelivery.NewScreeningHandler(screenRepo, screener, provider)
	backtestHandler := httpdelivery.NewBacktestHandler(backtest, backtestRepo)
	tokenHandler := httpdelivery.NewTokenHandler(tokenRepo)
	testHandler := httpdelivery.NewTestHandler(fcmClient, tokenRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.Handle)
	mux.HandleFunc("/api/screening", screeningHandler.HandleGetRows)
	mux.HandleFunc("/api/screening/run", screeningHandler.HandleRunScreening)
	mux.HandleFunc("/api/markets", screeningHandler.HandleGetMarkets)
	mux.HandleFunc("/api/backtest", backtestHandler.HandleRunBacktest)
	mux.HandleFunc("/api/backtest/run", backtestHandler.HandleGetRun)
	mux.HandleFunc("/api/backtest/history", backtestHandler.HandleGetHistory)
	mux.HandleFunc("/api/tokens/register", tokenHandler.HandleRegisterToken)
	mux.HandleFunc("/api/tokens/unregister", tokenHandler.HandleUnregisterToken)
	mux.HandleFunc("/api/notifications/test", testHandler.SendTestNotification)

	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("Server executing on %s", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
