package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "Checkout sessions created at the payment provider",
		},
		[]string{"source"},
	)

	entriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_cart_entries_dropped_total",
			Help: "Cart entries dropped while building line items",
		},
		[]string{"reason"},
	)

	providerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_provider_failures_total",
			Help: "Failed payment provider calls",
		},
		[]string{"op"},
	)
)
