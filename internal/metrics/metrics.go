// ABOUTME: Prometheus metrics for posts, agent runs, commands, and stream watchers
// ABOUTME: All metrics are package-level collectors registered via promauto

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts posts by author kind.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentboard_posts_created_total",
		Help: "The total number of posts created",
	}, []string{"author_kind"})

	// RunsCompleted counts agent runs reaching a terminal status.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentboard_agent_runs_total",
		Help: "The total number of agent runs by terminal status",
	}, []string{"agent", "status"})

	// RunsActive tracks runs currently queued or running.
	RunsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentboard_agent_runs_active",
		Help: "Agent runs currently queued or running",
	})

	// CommandsExecuted counts slash-command executions.
	CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentboard_commands_total",
		Help: "The total number of slash-commands executed",
	}, []string{"kind", "status"})

	// RunDuration observes wall time of agent runs in seconds.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agentboard_agent_run_duration_seconds",
		Help:    "Histogram of agent run duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"agent"})

	// StreamWatchers tracks open live-update streams.
	StreamWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentboard_stream_watchers",
		Help: "Currently open thread event streams",
	})

	// AuditDropped counts durable audit writes shed under queue pressure.
	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentboard_audit_dropped_writes_total",
		Help: "Durable audit writes dropped because the queue was full",
	})
)
