package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of pending orders created at checkout",
	})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders transitioned to paid",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of orders transitioned to failed",
	}, []string{"provider_status"})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkout attempts",
	}, []string{"reason"})

	WebhookNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_total",
		Help: "Total number of payment webhook notifications by outcome",
	}, []string{"outcome"})

	DuplicateNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_duplicate_notifications_total",
		Help: "Total number of redelivered notifications for already-paid orders",
	})

	StockOversellTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_oversell_total",
		Help: "Total number of stock decrements that hit the zero floor",
	})

	PaymentLookupLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_lookup_latency_seconds",
		Help:    "Latency of authoritative payment lookups at the provider",
		Buckets: prometheus.DefBuckets,
	})

	PreferenceCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "preference_create_latency_seconds",
		Help:    "Latency of payment preference creation at the provider",
		Buckets: prometheus.DefBuckets,
	})

	ReceiptsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipts_sent_total",
		Help: "Total number of receipt emails dispatched",
	})

	ReceiptsFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipts_fallback_total",
		Help: "Total number of receipts built from the static fallback template",
	})

	ReceiptsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipts_failed_total",
		Help: "Total number of receipt dispatch failures",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
