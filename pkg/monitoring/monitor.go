package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// EvaluationsSaved 按 outcome 统计写入的指标评价
	EvaluationsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rubrics_evaluations_saved_total",
			Help: "Indicator evaluations upserted, by student outcome",
		},
		[]string{"outcome"},
	)

	EvaluationsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rubrics_evaluations_removed_total",
			Help: "Indicator evaluations deleted by reconcile or clear",
		},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rubrics_validation_failures_total",
			Help: "Rejected rubric submissions, by first failure reason",
		},
		[]string{"reason"},
	)

	GradesComputed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rubrics_grade_computed",
			Help:    "Distribution of computed grades as a fraction of the grade range",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	LockContention = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rubrics_instance_lock_busy_total",
			Help: "Saves rejected because the grading instance was locked",
		},
	)
)

var registerOnce sync.Once

// Init 可重复调用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			EvaluationsSaved,
			EvaluationsRemoved,
			ValidationFailures,
			GradesComputed,
			LockContention,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
