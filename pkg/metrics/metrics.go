// Package metrics provides Prometheus instrumentation for tabula table
// operations.
//
// # Overview
//
// A Collector implements table.Observer. Attach it to a table and every
// row-producing operation (filter, select, merge, groupby) updates:
//   - an operation counter labelled by op and status
//   - a duration histogram labelled by op
//   - output row and group count histograms labelled by op
//   - merge row outcomes (matched, unmatched_left, unmatched_right, null_key)
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector("tabula", reg)
//	if err != nil {
//	    return err
//	}
//	tbl.WithObserver(collector)
//
// Collectors register on the Registerer they are given, never on the
// process-wide default, so several engines can coexist in one binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Join outcome label values
const (
	OutcomeMatched        = "matched"
	OutcomeUnmatchedLeft  = "unmatched_left"
	OutcomeUnmatchedRight = "unmatched_right"
	OutcomeNullKey        = "null_key"
)

// Collector records table operation metrics
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	outputRows *prometheus.HistogramVec
	groups     *prometheus.HistogramVec
	joins      *prometheus.CounterVec
	joinRows   *prometheus.CounterVec
}

// NewCollector creates the collector's metrics under namespace and
// registers them on reg
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of table operations",
			},
			[]string{"op", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Table operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us .. ~2.6s
			},
			[]string{"op"},
		),
		outputRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_output_rows",
				Help:      "Rows produced per table operation",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
			},
			[]string{"op"},
		),
		groups: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "groupby_groups",
				Help:      "Number of groups per groupby operation",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
			},
			[]string{"op"},
		),
		joins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merges_total",
				Help:      "Total number of merges by join type",
			},
			[]string{"join_type"},
		),
		joinRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_rows_total",
				Help:      "Rows paired or left unmatched by merges, by outcome",
			},
			[]string{"join_type", "outcome"},
		),
	}

	for _, m := range []prometheus.Collector{c.operations, c.latency, c.outputRows, c.groups, c.joins, c.joinRows} {
		if err := reg.Register(m); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to register metric").
				WithDetail("namespace", namespace)
		}
	}
	return c, nil
}

// OnOperation implements table.Observer
func (c *Collector) OnOperation(ev table.Event) {
	op := string(ev.Op)
	status := StatusSuccess
	if ev.Err != nil {
		status = StatusError
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.latency.WithLabelValues(op).Observe(ev.Duration.Seconds())

	if ev.Err != nil {
		return
	}
	c.outputRows.WithLabelValues(op).Observe(float64(ev.OutputRows))
	if ev.Groups > 0 {
		c.groups.WithLabelValues(op).Observe(float64(ev.Groups))
	}
	if ev.JoinType != "" {
		c.joins.WithLabelValues(ev.JoinType).Inc()
	}
	if js := ev.Join; js != nil {
		c.joinRows.WithLabelValues(ev.JoinType, OutcomeMatched).Add(float64(js.Matches))
		c.joinRows.WithLabelValues(ev.JoinType, OutcomeUnmatchedLeft).Add(float64(js.UnmatchedLeft))
		c.joinRows.WithLabelValues(ev.JoinType, OutcomeUnmatchedRight).Add(float64(js.UnmatchedRight))
		c.joinRows.WithLabelValues(ev.JoinType, OutcomeNullKey).Add(float64(js.NullKeyRows))
	}
}
