package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Checkout       *CheckoutHandler
	Products       *ProductHandler
	Config         *ConfigHandler
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestIDMiddleware(log))
	r.Use(AccessLogMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// method checks live in the handlers so 405 carries the Allow header
		r.HandleFunc("/create-checkout-session", cfg.Checkout.Create)
		r.HandleFunc("/checkout-session", cfg.Checkout.Retrieve)

		r.Get("/products", cfg.Products.List)
		r.Get("/products/{id}", cfg.Products.Get)
		r.Get("/config", cfg.Config.Get)
	})

	return otelhttp.NewHandler(r, "storefront")
}
