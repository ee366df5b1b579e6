package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcamp_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bootcamp_request_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bootcamp_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bootcamp_djamo_request_seconds",
			Help:    "Latency of payment gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	ChargesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcamp_charges_created_total",
			Help: "Charges created by payment mode",
		},
		[]string{"mode"},
	)

	ChargeSettlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcamp_charge_settlements_total",
			Help: "Charge status transitions applied to orders",
		},
		[]string{"status", "source"},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootcamp_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bootcamp_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	OutboxDead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bootcamp_outbox_dead_total",
			Help: "Outbox events given up after repeated relay failures",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bootcamp_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcamp_emails_sent_total",
			Help: "Notification e-mails by template and outcome",
		},
		[]string{"template", "outcome"},
	)
)
