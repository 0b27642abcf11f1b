// internal/utils/metrics.go
package utils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "trustlens"

// MetricsCollector owns an OpenTelemetry meter provider whose readings are
// pulled on demand through a manual reader.
type MetricsCollector struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
	meter    metric.Meter
}

// HistogramSummary is the flattened view of one histogram series
type HistogramSummary struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// MetricsSnapshot is what /api/metrics serves. Keys are the instrument name
// for the total and name{k=v,...} for each attribute set.
type MetricsSnapshot struct {
	Counters   map[string]int64            `json:"counters"`
	Histograms map[string]HistogramSummary `json:"histograms"`
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// NewMetricsCollector creates a collector with its own provider and reader
func NewMetricsCollector() *MetricsCollector {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", meterName),
		)),
	)
	return &MetricsCollector{
		provider: provider,
		reader:   reader,
		meter:    provider.Meter(meterName),
	}
}

// Meter returns the meter instruments are created from
func (m *MetricsCollector) Meter() metric.Meter {
	return m.meter
}

// Shutdown stops the provider; later readings fail.
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func (m *MetricsCollector) collect(ctx context.Context) ([]metricdata.Metrics, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	var out []metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		out = append(out, sm.Metrics...)
	}
	return out, nil
}

// GetCounterValue sums the points of an integer counter whose attributes
// include every given pair. Unknown counters read as zero.
func (m *MetricsCollector) GetCounterValue(name string, attrs ...attribute.KeyValue) int64 {
	all, err := m.collect(context.Background())
	if err != nil {
		return 0
	}

	var total int64
	for _, md := range all {
		if md.Name != name {
			continue
		}
		sum, ok := md.Data.(metricdata.Sum[int64])
		if !ok {
			continue
		}
		for _, dp := range sum.DataPoints {
			if hasAttributes(dp.Attributes, attrs) {
				total += dp.Value
			}
		}
	}
	return total
}

func hasAttributes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Type() != kv.Value.Type() || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}

func seriesKey(name string, set attribute.Set) string {
	if set.Len() == 0 {
		return name
	}
	return name + "{" + set.Encoded(attribute.DefaultEncoder()) + "}"
}

// Snapshot reads every instrument once
func (m *MetricsCollector) Snapshot(ctx context.Context) (MetricsSnapshot, error) {
	snap := MetricsSnapshot{
		Counters:   make(map[string]int64),
		Histograms: make(map[string]HistogramSummary),
	}

	all, err := m.collect(ctx)
	if err != nil {
		return snap, err
	}

	for _, md := range all {
		switch data := md.Data.(type) {
		case metricdata.Sum[int64]:
			for _, dp := range data.DataPoints {
				snap.Counters[md.Name] += dp.Value
				if dp.Attributes.Len() > 0 {
					snap.Counters[seriesKey(md.Name, dp.Attributes)] = dp.Value
				}
			}
		case metricdata.Histogram[float64]:
			total := HistogramSummary{}
			for i, dp := range data.DataPoints {
				point := summarize(dp)
				if dp.Attributes.Len() > 0 {
					snap.Histograms[seriesKey(md.Name, dp.Attributes)] = point
				}
				total = mergeSummary(total, point, i == 0)
			}
			snap.Histograms[md.Name] = total
		}
	}
	return snap, nil
}

func summarize(dp metricdata.HistogramDataPoint[float64]) HistogramSummary {
	s := HistogramSummary{Count: dp.Count, Sum: dp.Sum}
	if v, ok := dp.Min.Value(); ok {
		s.Min = v
	}
	if v, ok := dp.Max.Value(); ok {
		s.Max = v
	}
	return s
}

func mergeSummary(acc, point HistogramSummary, first bool) HistogramSummary {
	if first {
		return point
	}
	acc.Count += point.Count
	acc.Sum += point.Sum
	if point.Min < acc.Min {
		acc.Min = point.Min
	}
	if point.Max > acc.Max {
		acc.Max = point.Max
	}
	return acc
}

// fetch outcomes
const (
	OutcomePrimary  = "primary"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// APIMetrics records domain metrics for the HTTP surface and the signal fan-out
type APIMetrics struct {
	metrics *MetricsCollector
	logger  *Logger

	requests         metric.Int64Counter
	requestDuration  metric.Float64Histogram
	signalFetches    metric.Int64Counter
	signalDuration   metric.Float64Histogram
	analyses         metric.Int64Counter
	trustScore       metric.Float64Histogram
	analysisDuration metric.Float64Histogram
}

// NewAPIMetrics creates metrics bound to the global collector and logger
func NewAPIMetrics() *APIMetrics {
	return NewAPIMetricsWith(GetMetricsCollector(), GetLogger())
}

// NewAPIMetricsWith creates metrics over an explicit collector and logger
func NewAPIMetricsWith(collector *MetricsCollector, logger *Logger) *APIMetrics {
	am := &APIMetrics{
		metrics: collector,
		logger:  logger,
	}
	am.initInstruments()
	return am
}

// instrument names are constant and valid, so creation errors are dropped
func (am *APIMetrics) initInstruments() {
	meter := am.metrics.Meter()
	am.requests, _ = meter.Int64Counter("api_requests_total",
		metric.WithDescription("HTTP requests served"))
	am.requestDuration, _ = meter.Float64Histogram("api_request_duration_ms",
		metric.WithUnit("ms"))
	am.signalFetches, _ = meter.Int64Counter("signal_fetches_total",
		metric.WithDescription("Signal fetcher outcomes"))
	am.signalDuration, _ = meter.Float64Histogram("signal_fetch_duration_ms",
		metric.WithUnit("ms"))
	am.analyses, _ = meter.Int64Counter("analyses_total",
		metric.WithDescription("Completed analyses"))
	am.trustScore, _ = meter.Float64Histogram("analysis_trust_score")
	am.analysisDuration, _ = meter.Float64Histogram("analysis_duration_ms",
		metric.WithUnit("ms"))
}

// Collector exposes the underlying collector
func (am *APIMetrics) Collector() *MetricsCollector {
	return am.metrics
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordAPIRequest records metrics for an API request
func (am *APIMetrics) RecordAPIRequest(endpoint, method string, statusCode int, duration time.Duration) {
	ctx := context.Background()
	am.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
		attribute.String("status_class", strconv.Itoa(statusCode/100)+"xx"),
	))
	am.requestDuration.Record(ctx, millis(duration), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordSignalFetch records one fetcher outcome
func (am *APIMetrics) RecordSignalFetch(category, source string, succeeded, degraded bool, duration time.Duration) {
	outcome := OutcomePrimary
	switch {
	case !succeeded:
		outcome = OutcomeFailed
	case degraded:
		outcome = OutcomeDegraded
	}

	ctx := context.Background()
	am.signalFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
	am.signalDuration.Record(ctx, millis(duration), metric.WithAttributes(
		attribute.String("category", category),
	))
}

// RecordAnalysis records the outcome of a completed analysis
func (am *APIMetrics) RecordAnalysis(riskLevel string, trustScore int, duration time.Duration) {
	ctx := context.Background()
	risk := metric.WithAttributes(attribute.String("risk_level", riskLevel))
	am.analyses.Add(ctx, 1, risk)
	am.trustScore.Record(ctx, float64(trustScore), risk)
	am.analysisDuration.Record(ctx, millis(duration))
}

// StartMetricsCollection periodically logs a metrics summary until ctx is done
func (am *APIMetrics) StartMetricsCollection(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := am.metrics.Snapshot(ctx)
				if err != nil {
					am.logger.Warn("Metrics snapshot failed", map[string]interface{}{
						"error": err.Error(),
					})
					continue
				}
				am.logger.Info("Periodic metrics report", map[string]interface{}{
					"counters": snap.Counters,
				})
			}
		}
	}()
}
