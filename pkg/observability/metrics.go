package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChangesTotal   = "treediff.changes.total"
	metricObjectsFetched = "treediff.objects.fetched.total"
	metricDiffDuration   = "treediff.diff.duration.seconds"
	metricDiffsTotal     = "treediff.diffs.total"

	attrAction = "action"
	attrStatus = "status"

	statusOK        = "ok"
	statusError     = "error"
	statusCancelled = "cancelled"
)

// durationBucketBoundaries covers 100µs to 60s; a diff ranges from a handful
// of entries to a full kernel-sized snapshot walk.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60}

// DiffMetrics holds the OTel instruments describing diff traversals.
type DiffMetrics struct {
	changesTotal   metric.Int64Counter
	objectsFetched metric.Int64Counter
	diffsTotal     metric.Int64Counter
	diffDuration   metric.Float64Histogram
}

// NewDiffMetrics creates the diff instruments from the given meter.
func NewDiffMetrics(mt metric.Meter) (*DiffMetrics, error) {
	changes, err := mt.Int64Counter(metricChangesTotal,
		metric.WithDescription("Total number of tree changes reported"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChangesTotal, err)
	}

	fetched, err := mt.Int64Counter(metricObjectsFetched,
		metric.WithDescription("Total number of sub-tree objects fetched during recursion"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricObjectsFetched, err)
	}

	diffs, err := mt.Int64Counter(metricDiffsTotal,
		metric.WithDescription("Total number of diff invocations"),
		metric.WithUnit("{diff}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDiffsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricDiffDuration,
		metric.WithDescription("Diff traversal duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDiffDuration, err)
	}

	return &DiffMetrics{
		changesTotal:   changes,
		objectsFetched: fetched,
		diffsTotal:     diffs,
		diffDuration:   duration,
	}, nil
}

// RecordChange counts one reported change by action ("A", "D", "M").
func (m *DiffMetrics) RecordChange(ctx context.Context, action string) {
	m.changesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrAction, action)))
}

// RecordFetch counts sub-tree fetches performed during recursion.
func (m *DiffMetrics) RecordFetch(ctx context.Context, count int64) {
	m.objectsFetched.Add(ctx, count)
}

// RecordDiff records one completed diff invocation with its outcome.
func (m *DiffMetrics) RecordDiff(ctx context.Context, elapsed time.Duration, status DiffStatus) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, string(status)))

	m.diffsTotal.Add(ctx, 1, attrs)
	m.diffDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// DiffStatus classifies a diff outcome for metric attribution.
type DiffStatus string

// Diff outcomes.
const (
	DiffOK        DiffStatus = statusOK
	DiffError     DiffStatus = statusError
	DiffCancelled DiffStatus = statusCancelled
)
