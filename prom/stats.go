package prom

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIStats counts requests made to Firefly. It satisfies firefly.Observer.
type APIStats struct {
	APICalls        *prometheus.CounterVec
	APIErrors       *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewAPIStats(namespace string) *APIStats {
	return &APIStats{
		APICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "status",
				Name:      "api_calls",
				Help:      "Count of API calls",
			},
			[]string{"method", "resource", "code"},
		),
		APIErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "status",
				Name:      "api_errors",
				Help:      "Count of API Errors",
			},
			[]string{"method", "resource"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "status",
				Name:      "api_request_seconds",
				Help:      "Duration of API requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
	}
}

func (s *APIStats) Describe(ch chan<- *prometheus.Desc) {
	s.APICalls.Describe(ch)
	s.APIErrors.Describe(ch)
	s.RequestDuration.Describe(ch)
}

func (s *APIStats) Collect(ch chan<- prometheus.Metric) {
	s.APICalls.Collect(ch)
	s.APIErrors.Collect(ch)
	s.RequestDuration.Collect(ch)
}

func (s *APIStats) ObserveRequest(method, path string, status int, elapsed time.Duration, err error) {
	res := resource(path)
	s.APICalls.WithLabelValues(method, res, strconv.Itoa(status)).Inc()
	s.RequestDuration.WithLabelValues(method, res).Observe(elapsed.Seconds())
	if err != nil {
		s.APIErrors.WithLabelValues(method, res).Inc()
	}
}

// resource strips IDs so "accounts/12" and "accounts/13" share a label.
func resource(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}
