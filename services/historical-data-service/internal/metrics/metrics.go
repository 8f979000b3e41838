package metrics

import (
	"net/http"
	"strconv"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Range check outcomes
const (
	ResultValid            = "valid"
	ResultAdjusted         = "adjusted"
	ResultUnknownTimeframe = "unknown_timeframe"
)

var (
	rangeValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historical_range_validations_total",
			Help: "Total number of date range checks by timeframe and outcome",
		},
		[]string{"timeframe", "result"},
	)

	rangeSelectedMonths = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "historical_range_selected_months",
			Help:    "Distribution of requested range lengths in whole months",
			Buckets: []float64{1, 3, 6, 12, 24, 60, 120, 240},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historical_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(rangeValidationsTotal)
	prometheus.MustRegister(rangeSelectedMonths)
	prometheus.MustRegister(httpRequestsTotal)
}

// Handler serves the Prometheus metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRangeValidation records the outcome of a range check
func RecordRangeValidation(tf string, result timeframe.DateRangeValidation) {
	key := timeframe.Normalize(tf)
	switch {
	case !timeframe.IsKnown(key):
		rangeValidationsTotal.WithLabelValues("unknown", ResultUnknownTimeframe).Inc()
		return
	case result.WasAdjusted:
		rangeValidationsTotal.WithLabelValues(key, ResultAdjusted).Inc()
	default:
		rangeValidationsTotal.WithLabelValues(key, ResultValid).Inc()
	}

	if result.SelectedMonths >= 0 {
		rangeSelectedMonths.Observe(float64(result.SelectedMonths))
	}
}

// RecordHTTPRequest counts a finished request
func RecordHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
