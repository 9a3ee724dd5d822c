package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exampro/internal/model"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	gradeUpserts    *prometheus.CounterVec
	examsClosed     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exampro",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "exampro",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exampro",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		gradeUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exampro",
			Name:      "grade_upserts_total",
			Help:      "Grade writes by resulting status.",
		}, []string{"status"}),
		examsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exampro",
			Name:      "exams_closed_total",
			Help:      "Exams moved to termine by the status job.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.logins,
		m.gradeUpserts,
		m.examsClosed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) LoginAttempt(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GradeUpserted(status model.GradeStatus) {
	m.gradeUpserts.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ExamsClosed(n int64) {
	if n > 0 {
		m.examsClosed.Add(float64(n))
	}
}
