package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	PollCycles        = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_poll_cycles_total", Help: "Poll loop iterations"})
	PollPanics        = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_poll_panics_total", Help: "Poll iterations aborted by a recovered panic"})
	ProjectsSeen      = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_projects_seen_total", Help: "New projects handed to the processor"})
	ProjectsCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_projects_completed_total", Help: "Projects moved to Completed"})
	ProjectsFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_projects_failed_total", Help: "Projects moved to Failed"})
	ProjectsAborted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_projects_aborted_total", Help: "Projects left untouched because the In Progress update failed"})
	LeadsWritten      = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_leads_written_total", Help: "Leads written to the record store"})
	WebhookCreated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_webhook_projects_created_total", Help: "Projects created via webhook"})
	WebhookErrors     = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_webhook_errors_total", Help: "Webhook requests answered with an error"})
	RateLimitRejects  = prometheus.NewCounter(prometheus.CounterOpts{Name: "cloudlead_rate_limit_rejects_total", Help: "Webhook requests rejected by rate limiter"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			PollCycles,
			PollPanics,
			ProjectsSeen,
			ProjectsCompleted,
			ProjectsFailed,
			ProjectsAborted,
			LeadsWritten,
			WebhookCreated,
			WebhookErrors,
			RateLimitRejects,
		)
	})
	return promhttp.Handler()
}
