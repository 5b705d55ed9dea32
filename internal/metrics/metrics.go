package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "leet_alarm"

// Answer results.
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

// Metrics holds the daemon's collectors.
type Metrics struct {
	registry *prometheus.Registry

	AlarmsConfigured    prometheus.Gauge
	AlarmsFired         prometheus.Counter
	AlarmsDismissed     prometheus.Counter
	ChallengesStarted   *prometheus.CounterVec
	ChallengesCompleted prometheus.Counter
	Answers             *prometheus.CounterVec
	RequestCounter      *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AlarmsConfigured: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarms_configured",
			Help:      "Number of configured alarms",
		}),
		AlarmsFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_fired_total",
			Help:      "Total number of fired alarms",
		}),
		AlarmsDismissed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_dismissed_total",
			Help:      "Total number of dismissed alarms",
		}),
		ChallengesStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "challenges_started_total",
				Help:      "Total number of started challenges",
			},
			[]string{"difficulty"},
		),
		ChallengesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_completed_total",
			Help:      "Total number of completed challenges",
		}),
		Answers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Total number of submitted answers",
			},
			[]string{"result"},
		),
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// SetAlarms records the number of configured alarms.
func (m *Metrics) SetAlarms(n int) {
	if m == nil {
		return
	}

	m.AlarmsConfigured.Set(float64(n))
}

// Fired counts a fired alarm.
func (m *Metrics) Fired() {
	if m == nil {
		return
	}

	m.AlarmsFired.Inc()
}

// Dismissed counts a dismissed alarm.
func (m *Metrics) Dismissed() {
	if m == nil {
		return
	}

	m.AlarmsDismissed.Inc()
}

// ChallengeStarted counts a started challenge.
func (m *Metrics) ChallengeStarted(difficulty string) {
	if m == nil {
		return
	}

	m.ChallengesStarted.WithLabelValues(difficulty).Inc()
}

// ChallengeCompleted counts a completed challenge.
func (m *Metrics) ChallengeCompleted() {
	if m == nil {
		return
	}

	m.ChallengesCompleted.Inc()
}

// Answer counts a submitted answer.
func (m *Metrics) Answer(correct bool) {
	if m == nil {
		return
	}

	result := ResultIncorrect
	if correct {
		result = ResultCorrect
	}

	m.Answers.WithLabelValues(result).Inc()
}

func (m *Metrics) observe(method string, start time.Time, err error) {
	m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	statusCode := "ok"
	if err != nil {
		st, _ := status.FromError(err)
		statusCode = st.Code().String()
	}

	m.RequestCounter.WithLabelValues(method, statusCode).Inc()
}

// UnaryServerInterceptor records count and duration of unary calls.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if m == nil {
			return handler(ctx, req)
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		m.observe(info.FullMethod, start, err)

		return resp, err
	}
}

// StreamServerInterceptor records count and duration of streaming calls.
func (m *Metrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		stream grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if m == nil {
			return handler(srv, stream)
		}

		start := time.Now()
		err := handler(srv, stream)
		m.observe(info.FullMethod, start, err)

		return err
	}
}
