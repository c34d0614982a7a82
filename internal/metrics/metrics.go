// Package metrics counts what a run did: requests, cache decisions and
// degraded results. Counters can be exported as a Prometheus textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "github_stats"

// Cache lookup results.
const (
	CacheHit        = "hit"
	CacheMiss       = "miss"
	CacheZeroCommit = "zero_commit"
)

// Recorder holds the counters of one process. All methods are safe to call
// on a nil Recorder, which records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	truncated    prometheus.Counter
	cacheWrites  *prometheus.CounterVec
	degraded     prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "GraphQL requests by query and outcome.",
		}, []string{"query", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loc_cache_lookups_total",
			Help:      "LOC cache lookups by result.",
		}, []string{"result"}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loc_history_truncated_total",
			Help:      "Commit history walks that stopped early on an error.",
		}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loc_cache_writes_total",
			Help:      "LOC cache rewrites by outcome.",
		}, []string{"outcome"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_runs_total",
			Help:      "Runs that fell back to placeholder statistics.",
		}),
	}
	r.registry.MustRegister(r.requests, r.cacheLookups, r.truncated, r.cacheWrites, r.degraded)
	return r
}

// ObserveRequest counts one GraphQL request.
func (r *Recorder) ObserveRequest(query, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(query, outcome).Inc()
}

// ObserveCacheLookup counts one cache decision.
func (r *Recorder) ObserveCacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveTruncatedHistory counts a history walk that ended early.
func (r *Recorder) ObserveTruncatedHistory() {
	if r == nil {
		return
	}
	r.truncated.Inc()
}

// ObserveCacheWrite counts a cache rewrite.
func (r *Recorder) ObserveCacheWrite(err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.cacheWrites.WithLabelValues(outcome).Inc()
}

// ObserveDegraded counts a run that reported placeholder statistics.
func (r *Recorder) ObserveDegraded() {
	if r == nil {
		return
	}
	r.degraded.Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all counters in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
