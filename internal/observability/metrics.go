package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teledigest_messages_ingested_total",
		Help: "The total number of ingested messages",
	}, []string{"channel"})

	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teledigest_messages_dropped_total",
		Help: "The total number of messages dropped before storage",
	}, []string{"channel", "reason"})

	IndexWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teledigest_index_write_failures_total",
		Help: "The total number of failed full-text index writes",
	})

	DigestsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teledigest_posts_total",
		Help: "The total number of digests posted",
	}, []string{"status"})

	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teledigest_commands_total",
		Help: "The total number of bot commands handled",
	}, []string{"command"})

	SummaryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "teledigest_summary_duration_seconds",
		Help:    "Duration of completion requests",
		Buckets: prometheus.DefBuckets,
	})
)
