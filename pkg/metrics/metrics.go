package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ResponsesIntercepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_insights_responses_intercepted_total",
			Help: "Job posting API responses captured, by transport.",
		},
		[]string{"transport"}, // fetch, xhr
	)

	CaptureFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_insights_capture_failures_total",
			Help: "Responses that matched but could not be captured.",
		},
		[]string{"reason"}, // loading_failed, status, body
	)

	PayloadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_insights_malformed_payloads_total",
			Help: "Captured bodies that were not valid JSON.",
		},
	)

	RecordsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_insights_records_stored_total",
			Help: "Job records upserted into the session store.",
		},
	)

	UnresolvedIdentifiers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_insights_unresolved_identifiers_total",
			Help: "Raw job objects dropped because no identifier could be derived.",
		},
	)

	CandidateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_insights_candidate_transitions_total",
			Help: "Candidate element state transitions, by target state.",
		},
		[]string{"state"}, // unresolved, pending, resolved
	)

	FocusOverlaysShown = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_insights_focus_overlays_shown_total",
			Help: "Focused job overlays rendered.",
		},
	)
)
