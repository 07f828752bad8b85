package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RulesCompiled counts rules successfully compiled into a match engine
	RulesCompiled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "rules_compiled_total",
			Help:      "Total number of fingerprint rules compiled into match engines",
		},
	)

	// RuleCompileFailures counts rules dropped because their regex did not compile
	RuleCompileFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "rule_compile_failures_total",
			Help:      "Total number of fingerprint rules dropped at compile time",
		},
	)

	// RuleEvalFailures counts per-call rule evaluation failures (timeouts included)
	RuleEvalFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "rule_eval_failures_total",
			Help:      "Total number of rule evaluations skipped due to runtime regex failures",
		},
	)

	// MatchRequests counts match calls
	MatchRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "match_requests_total",
			Help:      "Total number of match requests evaluated",
		},
	)

	// MatchHits counts results produced across all match calls
	MatchHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "match_hits_total",
			Help:      "Total number of detection results produced",
		},
	)

	// MatchDuration observes end-to-end match call latency
	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rix",
			Name:      "match_duration_seconds",
			Help:      "Latency of match calls over the full compiled rule set",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	// CorpusIssues counts load issues by kind
	CorpusIssues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rix",
			Name:      "corpus_load_issues_total",
			Help:      "Total number of corpus records skipped during loading",
		},
		[]string{"reason"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(RulesCompiled)
		prometheus.DefaultRegisterer.Register(RuleCompileFailures)
		prometheus.DefaultRegisterer.Register(RuleEvalFailures)
		prometheus.DefaultRegisterer.Register(MatchRequests)
		prometheus.DefaultRegisterer.Register(MatchHits)
		prometheus.DefaultRegisterer.Register(MatchDuration)
		prometheus.DefaultRegisterer.Register(CorpusIssues)
	})
}
