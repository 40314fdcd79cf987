package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	requestsTotal       *prometheus.CounterVec
	latencySeconds      *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	roundsDeclaredTotal *prometheus.CounterVec
	offersIssuedTotal   prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the drive API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drive_api_requests_total",
			Help: "Total number of drive API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drive_api_latency_seconds",
			Help:    "Latency distribution for drive API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drive_api_errors_total",
			Help: "Total number of error responses returned by drive endpoints.",
		}, []string{"method", "route", "status"})

		roundsDeclaredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drive_rounds_declared_total",
			Help: "Total number of round declarations, by outcome.",
		}, []string{"outcome"})

		offersIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drive_offers_issued_total",
			Help: "Total number of offer letters issued.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, roundsDeclaredTotal, offersIssuedTotal)
	})
}

// Requests exposes the counter for drive API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for drive API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for drive API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// RoundsDeclared exposes the counter for round declarations. The outcome
// label is "advanced" or "closed".
func RoundsDeclared() *prometheus.CounterVec {
	RegisterMetrics()
	return roundsDeclaredTotal
}

// OffersIssued exposes the counter for issued offer letters.
func OffersIssued() prometheus.Counter {
	RegisterMetrics()
	return offersIssuedTotal
}
