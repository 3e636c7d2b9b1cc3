// Package metrics exposes search progress as Prometheus counters.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trknhr/ghostguess/internal/search"
)

const namespace = "ghostguess"

// Collector counts search progress into its own registry. It implements
// search.Observer and is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	expanded *prometheus.CounterVec
	pruned   *prometheus.CounterVec
	searches *prometheus.CounterVec
	depth    prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		expanded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_expanded_total",
			Help:      "Candidates whose followers were generated, by candidate length.",
		}, []string{"length"}),
		pruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_pruned_total",
			Help:      "Candidates discarded by likelihood pruning, by candidate length.",
		}, []string{"length"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Finished searches by mode and result.",
		}, []string{"mode", "result"}),
		depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "found_password_length",
			Help:      "Rune length of passwords found.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
	}
	c.registry.MustRegister(c.expanded, c.pruned, c.searches, c.depth)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Expanded(cand search.Candidate) {
	c.expanded.WithLabelValues(lengthLabel(cand.Text)).Inc()
}

func (c *Collector) Pruned(cand search.Candidate) {
	c.pruned.WithLabelValues(lengthLabel(cand.Text)).Inc()
}

func (c *Collector) Finished(res search.Result) {
	result := "not_found"
	if res.Found {
		result = "found"
		c.depth.Observe(float64(len([]rune(res.Password))))
	}
	c.searches.WithLabelValues(string(res.Mode), result).Inc()
}

// WriteTextfile writes the text exposition of every metric to path.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func lengthLabel(text string) string {
	return strconv.Itoa(len([]rune(text)))
}
