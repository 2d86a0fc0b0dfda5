// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the interface the service layer records against.
type Collector interface {
	RecordLogin(success bool)
	RecordSignup(role string)
	RecordBookingCreated()
	RecordBookingTransition(from, to string)
	RecordNotificationFailure(kind string)
}

type PrometheusCollector struct {
	loginSuccess         prometheus.Counter
	loginFailure         prometheus.Counter
	signups              *prometheus.CounterVec
	bookingsCreated      prometheus.Counter
	bookingTransitions   *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	registry             *prometheus.Registry
}

func NewPrometheusCollector() *PrometheusCollector {
	c := &PrometheusCollector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agriclinic_login_success_total",
			Help: "Successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agriclinic_login_failure_total",
			Help: "Failed logins, regardless of cause.",
		}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriclinic_signups_total",
			Help: "Signups by role.",
		}, []string{"role"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agriclinic_bookings_created_total",
			Help: "Consultation bookings created.",
		}),
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriclinic_booking_transitions_total",
			Help: "Booking status transitions by edge.",
		}, []string{"from", "to"}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriclinic_notification_failures_total",
			Help: "Best-effort notifications that failed to send.",
		}, []string{"kind"}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.signups,
		c.bookingsCreated,
		c.bookingTransitions,
		c.notificationFailures,
	)

	return c
}

func (c *PrometheusCollector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
	} else {
		c.loginFailure.Inc()
	}
}

func (c *PrometheusCollector) RecordSignup(role string) {
	c.signups.WithLabelValues(role).Inc()
}

func (c *PrometheusCollector) RecordBookingCreated() {
	c.bookingsCreated.Inc()
}

func (c *PrometheusCollector) RecordBookingTransition(from, to string) {
	c.bookingTransitions.WithLabelValues(from, to).Inc()
}

func (c *PrometheusCollector) RecordNotificationFailure(kind string) {
	c.notificationFailures.WithLabelValues(kind).Inc()
}

// Handler serves the collector's registry for scraping.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Noop discards all recordings; used where metrics are not wired.
type Noop struct{}

func (Noop) RecordLogin(bool)                       {}
func (Noop) RecordSignup(string)                    {}
func (Noop) RecordBookingCreated()                  {}
func (Noop) RecordBookingTransition(string, string) {}
func (Noop) RecordNotificationFailure(string)       {}
