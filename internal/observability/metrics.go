package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ceustudio_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	studioSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceustudio_studio_sessions_started_total",
		Help: "Studio sessions started.",
	})
	studioControllers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ceustudio_studio_controllers",
		Help: "Live per-learner studio controllers.",
	})
	studioAdvances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_studio_advances_total",
			Help: "Continue-button presses by act and outcome (moved, blocked, completed).",
		},
		[]string{"act", "outcome"},
	)
	quizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_quiz_submissions_total",
			Help: "Assessment submissions by result.",
		},
		[]string{"result"},
	)
	credentialsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceustudio_credentials_awarded_total",
		Help: "CEU credentials awarded.",
	})

	advisorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_advisor_requests_total",
			Help: "Advisory chat answers by source (genai, fallback).",
		},
		[]string{"source"},
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ceustudio_llm_request_duration_seconds",
			Help:    "Chat completion latency by model and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "status"},
	)

	waitlistSignups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_waitlist_signups_total",
			Help: "Waitlist submissions by outcome.",
		},
		[]string{"outcome"},
	)
	ingestionJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceustudio_ingestion_jobs_total",
			Help: "PDF ingestion jobs by status transition.",
		},
		[]string{"status"},
	)
)

func ObserveHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func StudioSessionStarted() { studioSessionsStarted.Inc() }

func StudioControllerOpened() { studioControllers.Inc() }

func StudioControllerClosed() { studioControllers.Dec() }

func CredentialAwarded() { credentialsAwarded.Inc() }

func AdvisorAnswered(source string) { advisorRequests.WithLabelValues(source).Inc() }

func WaitlistSignup(outcome string) { waitlistSignups.WithLabelValues(outcome).Inc() }

func IngestionJobStatus(status string) { ingestionJobs.WithLabelValues(status).Inc() }

func StudioAdvance(act int, outcome string) {
	studioAdvances.WithLabelValues(strconv.Itoa(act), outcome).Inc()
}

func QuizSubmitted(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	quizSubmissions.WithLabelValues(result).Inc()
}

func ObserveLLM(model string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmRequestDuration.WithLabelValues(model, status).Observe(d.Seconds())
}
