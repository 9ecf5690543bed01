package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns the ladder's collectors. It satisfies usecase.Recorder.
type Service struct {
	registry *prometheus.Registry

	PlayersRegisteredTotal prometheus.Counter
	MatchesSubmittedTotal  prometheus.Counter
	MatchesApprovedTotal   prometheus.Counter
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
}

// NewService registers collectors on a private registry, so tests and
// multiple app instances in one process never collide.
func NewService() *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		registry: reg,
		PlayersRegisteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scutta_players_registered_total",
			Help: "The total number of players created.",
		}),
		MatchesSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scutta_matches_submitted_total",
			Help: "The total number of matches submitted for approval.",
		}),
		MatchesApprovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scutta_matches_approved_total",
			Help: "The total number of matches moved from pending to approved.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scutta_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scutta_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		s.PlayersRegisteredTotal,
		s.MatchesSubmittedTotal,
		s.MatchesApprovedTotal,
		s.HTTPRequestsTotal,
		s.HTTPRequestDuration,
	)

	return s
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

func (s *Service) Gatherer() prometheus.Gatherer {
	return s.registry
}

func (s *Service) PlayersRegistered(n int) {
	if n > 0 {
		s.PlayersRegisteredTotal.Add(float64(n))
	}
}

func (s *Service) MatchSubmitted() {
	s.MatchesSubmittedTotal.Inc()
}

func (s *Service) MatchesApproved(n int) {
	if n > 0 {
		s.MatchesApprovedTotal.Add(float64(n))
	}
}

func (s *Service) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	s.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
