package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric names.
const (
	MetricGroupsTotal         = "ltl_groups_total"
	MetricRecordsDroppedTotal = "ltl_records_dropped_total"
	MetricFallbacksTotal      = "ltl_fallbacks_total"
	MetricBOLRenderedTotal    = "ltl_bol_rendered_total"
	MetricWMSSubmissionsTotal = "ltl_wms_submissions_total"
	MetricWMSSubmitDuration   = "ltl_wms_submit_duration_seconds"
)

var (
	attrOutcome = attribute.Key("outcome")
	attrClass   = attribute.Key("class")
	attrKind    = attribute.Key("kind")
	attrResult  = attribute.Key("result")
)

// ShippingMetrics records consolidation, BOL and WMS activity.
type ShippingMetrics struct {
	groups         *Counter
	recordsDropped *Counter
	fallbacks      *Counter
	bolRendered    *Counter
	submissions    *Counter
	submitDuration *Histogram
}

// NewShippingMetrics creates the instruments on meter.
func NewShippingMetrics(meter metric.Meter) (*ShippingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		m   ShippingMetrics
		err error
	)
	if m.groups, err = NewCounter(meter, MetricGroupsTotal, "Shipment groups formed", "{group}"); err != nil {
		return nil, err
	}
	if m.recordsDropped, err = NewCounter(meter, MetricRecordsDroppedTotal, "Order records dropped before grouping", "{record}"); err != nil {
		return nil, err
	}
	if m.fallbacks, err = NewCounter(meter, MetricFallbacksTotal, "Malformed numeric values replaced with a fallback", "{value}"); err != nil {
		return nil, err
	}
	if m.bolRendered, err = NewCounter(meter, MetricBOLRenderedTotal, "BOL documents rendered", "{document}"); err != nil {
		return nil, err
	}
	if m.submissions, err = NewCounter(meter, MetricWMSSubmissionsTotal, "WMS create-order submissions by outcome", "{submission}"); err != nil {
		return nil, err
	}
	m.submitDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        MetricWMSSubmitDuration,
		Description: "WMS create-order submission latency including retries",
		Unit:        "s",
		Boundaries:  []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordGrouping records one consolidation pass.
func (m *ShippingMetrics) RecordGrouping(ctx context.Context, groups, dropped int) {
	if m == nil {
		return
	}
	m.groups.Add(ctx, int64(groups))
	if dropped > 0 {
		m.recordsDropped.Add(ctx, int64(dropped))
	}
}

// RecordFallbacks records n fallbacks of the given kind.
func (m *ShippingMetrics) RecordFallbacks(ctx context.Context, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fallbacks.Add(ctx, int64(n), attrKind.String(kind))
}

// RecordBOL records one rendered document, ok or failed.
func (m *ShippingMetrics) RecordBOL(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.bolRendered.Inc(ctx, attrResult.String(result))
}

// RecordSubmission records one finished WMS submission.
func (m *ShippingMetrics) RecordSubmission(ctx context.Context, outcome, class string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attrOutcome.String(outcome), attrClass.String(class)}
	m.submissions.Inc(ctx, attrs...)
	m.submitDuration.Record(ctx, d.Seconds(), attrOutcome.String(outcome))
}
