package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SlotClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubboard_slot_clicks_total",
			Help: "Slot click interactions by outcome",
		},
		[]string{"outcome"},
	)

	ReservationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubboard_reservations_created_total",
			Help: "Total number of reservations created",
		},
	)

	ReservationsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubboard_reservations_cancelled_total",
			Help: "Total number of reservations cancelled",
		},
	)

	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubboard_feed_events_total",
			Help: "Change-feed events published",
		},
		[]string{"kind"},
	)

	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubboard_feed_subscribers",
			Help: "Currently connected change-feed subscribers",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubboard_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubboard_email_queue_length",
			Help: "Current length of the email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSlotClick(outcome string) {
	SlotClicksTotal.WithLabelValues(outcome).Inc()
}

func RecordReservationCreated() {
	ReservationsCreatedTotal.Inc()
}

func RecordReservationCancelled() {
	ReservationsCancelledTotal.Inc()
}

func RecordFeedEvent(kind string) {
	FeedEventsTotal.WithLabelValues(kind).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
