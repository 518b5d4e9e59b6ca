package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ClicksIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_clicks_issued_total",
			Help: "Total number of click identities issued",
		},
		[]string{"campaign"},
	)

	ViewsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mc_page_views_total",
			Help: "Total number of page views recorded",
		},
	)

	ConversionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_conversions_processed_total",
			Help: "Total number of conversion calls by outcome",
		},
		[]string{"outcome"}, // new, duplicate, direct, rejected
	)

	WebhookDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mc_webhook_duration_seconds",
			Help:    "Conversion webhook processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(ClicksIssued)
	prometheus.MustRegister(ViewsRecorded)
	prometheus.MustRegister(ConversionsProcessed)
	prometheus.MustRegister(WebhookDuration)
}
