// internal/services/observer.go
package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Corphon/TrustLens/internal/utils"
)

// FetchRecord describes how one fetcher settled.
type FetchRecord struct {
	Category  string
	Source    string
	Latency   time.Duration
	Succeeded bool // returned before its deadline without error
	Degraded  bool // the signal came from a local fallback
	TimedOut  bool
	Err       error
}

// FetchObserver receives one record per fetcher per analysis.
type FetchObserver interface {
	ObserveFetch(record FetchRecord)
}

// ObserverFunc adapts a function to FetchObserver
type ObserverFunc func(record FetchRecord)

func (f ObserverFunc) ObserveFetch(record FetchRecord) { f(record) }

type nopObserver struct{}

func (nopObserver) ObserveFetch(FetchRecord) {}

// LogObserver writes fetch records to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With().Str("component", "orchestrator").Logger()}
}

func (o *LogObserver) ObserveFetch(r FetchRecord) {
	var event *zerolog.Event
	switch {
	case !r.Succeeded:
		event = o.logger.Warn().Err(r.Err)
	case r.Degraded:
		event = o.logger.Info()
	default:
		event = o.logger.Debug()
	}

	event.
		Str("category", r.Category).
		Str("source", r.Source).
		Dur("latency", r.Latency).
		Bool("degraded", r.Degraded).
		Bool("timed_out", r.TimedOut).
		Msg("signal settled")
}

// MetricsObserver feeds fetch records into APIMetrics.
type MetricsObserver struct {
	metrics *utils.APIMetrics
}

func NewMetricsObserver(metrics *utils.APIMetrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

func (o *MetricsObserver) ObserveFetch(r FetchRecord) {
	o.metrics.RecordSignalFetch(r.Category, r.Source, r.Succeeded, r.Degraded, r.Latency)
}

// MultiObserver fans a record out to several observers in order.
type MultiObserver []FetchObserver

func (m MultiObserver) ObserveFetch(r FetchRecord) {
	for _, o := range m {
		if o != nil {
			o.ObserveFetch(r)
		}
	}
}
