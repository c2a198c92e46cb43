// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes handler latency by method, path and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ghostpass",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// LedgerMutations counts committed balance mutations by entry type.
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "ledger_mutations_total",
		Help:      "Committed wallet ledger mutations.",
	}, []string{"type"})

	// PaymentsCaptured counts successfully credited top-up sessions.
	PaymentsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "payments_captured_total",
		Help:      "Top-up payment sessions credited to wallets.",
	})

	// ScansTotal counts gateway admission decisions by outcome.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "gate_scans_total",
		Help:      "QR admission scans by decision outcome.",
	}, []string{"outcome"})

	// PassesIssued counts ghost passes created by ticket purchases.
	PassesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "passes_issued_total",
		Help:      "Ghost passes issued.",
	})

	// PassesExpired counts passes swept past their validity window.
	PassesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "passes_expired_total",
		Help:      "Ghost passes expired by the sweeper.",
	})

	// PayoutDecisions counts payout state transitions by target status.
	PayoutDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostpass",
		Name:      "payout_decisions_total",
		Help:      "Payout request decisions.",
	}, []string{"status"})
)
