package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/config"
	"github.com/G77-BOT/aura-flow/internal/events"
	h "github.com/G77-BOT/aura-flow/internal/http"
	"github.com/G77-BOT/aura-flow/internal/payment"
	"github.com/G77-BOT/aura-flow/pkg/circuitbreaker"
	"github.com/G77-BOT/aura-flow/pkg/logger"
)

func main() {
	configDir := getEnv("STOREFRONT_CONFIG_DIR", "configs")
	cfg, err := config.Load(configDir, config.EnvName())
	if err != nil {
		slog.Error("failed to load config", "dir", configDir, "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Component: cfg.App.Name,
		Level:     cfg.App.LogLevel,
		File:      cfg.App.LogFile,
	})
	slog.SetDefault(log)

	ctx := context.Background()

	cat, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	provider := payment.NewStripeProvider(payment.Config{
		SecretKey:  cfg.Stripe.SecretKey,
		BackendURL: cfg.Stripe.APIURL,
		HTTPClient: &http.Client{
			Timeout:   cfg.Stripe.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Breaker: circuitbreaker.Config{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
		Logger: log.With("provider", "stripe"),
	})

	var publisher checkout.EventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer kp.Close()
		publisher = kp
		log.Info("publishing checkout events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	service := checkout.NewService(cat, provider, publisher, checkout.Config{
		SuccessPath:     cfg.Checkout.SuccessPath,
		CancelPath:      cfg.Checkout.CancelPath,
		AllowByValue:    cfg.Checkout.AllowByValue,
		RetrieveTimeout: cfg.Stripe.Timeout,
	})
	if cfg.Checkout.AllowByValue {
		log.Warn("client-priced line items are accepted")
	}

	// Validate has already parsed both
	taxPercent, _ := cfg.TaxPercent()
	links, _ := cfg.PaymentLinkMap()

	router := h.NewRouter(h.RouterConfig{
		Checkout:       h.NewCheckoutHandler(service, cfg.HTTP.HandlerTimeout, cfg.HTTP.MaxBodyBytes, cfg.IsProduction()),
		Products:       h.NewProductHandler(cat),
		Config:         h.NewConfigHandler(cfg.Stripe.PublishableKey, links, taxPercent),
		Logger:         log,
		RequestTimeout: cfg.HTTP.HandlerTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("storefront starting", "addr", cfg.App.HTTPAddr, "environment", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}
	log.Info("server exited")
}

// loadCatalog reads products from SQLite when a database is configured and
// falls back to the compiled-in catalog otherwise.
func loadCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (catalog.Catalog, error) {
	if cfg.Catalog.DBPath == "" {
		log.Info("using built-in catalog")
		return catalog.Default(), nil
	}

	repo, err := catalog.NewSQLiteRepository(cfg.Catalog.DBPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	version, err := repo.RunMigrations(cfg.Catalog.MigrationsPath)
	if err != nil {
		return nil, err
	}
	cat, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded", "db_path", cfg.Catalog.DBPath, "schema_version", version, "products", len(cat.List()))
	return cat, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
