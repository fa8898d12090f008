package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finboard/internal/app"
	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/handler"
	"finboard/internal/middleware"
	"finboard/internal/newsapi"
	"finboard/internal/repository"
	"finboard/internal/repository/jsonfile"
	"finboard/internal/repository/postgres"
	"finboard/internal/service"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Finboard Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database with retries
	db, err := postgres.Connect(ctx, cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := postgres.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewFetchMetrics(registry)
	metricsServer := startMetricsServer(cfg.MetricsAddr, registry, logger)

	// Article source, cached when Redis is configured
	var articles repository.ArticleSource = newsapi.NewClient(newsapi.Options{
		BaseURL:    cfg.News.BaseURL,
		Token:      cfg.News.Token,
		Language:   cfg.News.Language,
		Categories: cfg.News.Categories,
		PageSize:   cfg.News.PageSize,
		Lookback:   cfg.News.Lookback,
	}, &http.Client{Timeout: 20 * time.Second}, logger.Named("newsapi"))

	if cfg.Redis.Enabled() {
		redisCache, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, article cache disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			articles = newsapi.NewCachedSource(articles, redisCache, cfg.News.CacheTTL, logger.Named("news_cache"))
			logger.Info("Article cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Initialize stores
	a := app.New(ctx, app.Deps{
		Credentials: jsonfile.NewCredentialStore(cfg.CredentialsPath(), logger.Named("credentials")),
		Sessions:    jsonfile.NewSessionStore(cfg.SessionPath()),
		Watchlist:   postgres.NewWatchlistRepo(db),
		Articles:    articles,
		Metrics:     metrics,
		Logger:      logger,
	})
	defer a.Close()

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	bot.Use(middleware.OwnerOnly(cfg.BotOwnerID, logger))

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(bot, a, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start watchlist resync job in background
	go runResyncJob(ctx, a.Watchlist, cfg.WatchlistResyncInterval, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to stop metrics server", zap.Error(err))
		}
	}

	logger.Info("Bot stopped gracefully")
}

// startMetricsServer serves /metrics on addr; an empty addr disables it
func startMetricsServer(addr string, registry *prometheus.Registry, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// runResyncJob periodically reloads the watchlist from the database
func runResyncJob(ctx context.Context, watchlist *service.Watchlist, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("Watchlist resync disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watchlist resync job stopped")
			return
		case <-ticker.C:
			if err := watchlist.Resync(ctx); err != nil {
				logger.Error("Failed to resync watchlist", zap.Error(err))
			}
		}
	}
}
