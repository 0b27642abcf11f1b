// internal/services/orchestrator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Corphon/TrustLens/internal/models"
)

// DefaultFetchTimeout bounds each fetcher, internal retries included.
const DefaultFetchTimeout = 15 * time.Second

// FanOut is the complete signal set plus bookkeeping.
type FanOut struct {
	Signals models.SignalSet
	Status  models.APIStatus
}

// Orchestrator runs the four fetchers concurrently and settles all of them.
type Orchestrator struct {
	spam      Fetcher[models.SpamSignal]
	phishing  Fetcher[models.PhishingSignal]
	sentiment Fetcher[models.SentimentSignal]
	urls      Fetcher[models.URLSignal]

	timeout  time.Duration
	observer FetchObserver
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithFetchTimeout overrides the per-fetcher deadline
func WithFetchTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithObserver installs the fetch observer
func WithObserver(observer FetchObserver) OrchestratorOption {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func NewOrchestrator(
	spam Fetcher[models.SpamSignal],
	phishing Fetcher[models.PhishingSignal],
	sentiment Fetcher[models.SentimentSignal],
	urls Fetcher[models.URLSignal],
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		spam:      spam,
		phishing:  phishing,
		sentiment: sentiment,
		urls:      urls,
		timeout:   DefaultFetchTimeout,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Timeout returns the per-fetcher deadline
func (o *Orchestrator) Timeout() time.Duration {
	return o.timeout
}

type outcome[T any] struct {
	value    T
	err      error
	timedOut bool
	latency  time.Duration
}

// settle runs f under its own deadline. The result is whichever comes first:
// the fetcher's answer or the deadline.
func settle[T any](ctx context.Context, timeout time.Duration, f Fetcher[T], content string) outcome[T] {
	start := time.Now()
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("fetcher panicked: %v", r)}
			}
		}()
		if f == nil {
			done <- outcome[T]{err: errors.New("fetcher not configured")}
			return
		}
		v, err := f.Fetch(fctx, content)
		done <- outcome[T]{value: v, err: err}
	}()

	var out outcome[T]
	select {
	case out = <-done:
	case <-fctx.Done():
		out = outcome[T]{err: fctx.Err()}
	}
	if out.err != nil && errors.Is(fctx.Err(), context.DeadlineExceeded) {
		out.timedOut = true
	}
	out.latency = time.Since(start)
	return out
}

// pick returns the fetched value, or the static substitute on failure.
func pick[T any](out outcome[T], label string, substitute func(reason string) T) T {
	if out.err == nil {
		return out.value
	}
	reason := out.err.Error()
	if out.timedOut {
		reason = label + " analysis timeout"
	}
	return substitute(reason)
}

// Run fans content out to every fetcher. It never fails: a fetcher that errors
// or misses its deadline is replaced by a static substitute. Cancellation of
// ctx is not propagated to the fetchers.
func (o *Orchestrator) Run(ctx context.Context, content string) FanOut {
	base := context.WithoutCancel(ctx)

	var (
		g        errgroup.Group
		set      models.SignalSet
		spamOut  outcome[models.SpamSignal]
		phishOut outcome[models.PhishingSignal]
		sentOut  outcome[models.SentimentSignal]
		urlOut   outcome[models.URLSignal]
	)

	// each goroutine writes only its own variables; none returns an error
	g.Go(func() error {
		spamOut = settle(base, o.timeout, o.spam, content)
		set.Spam = pick(spamOut, "Spam", staticSpam)
		return nil
	})
	g.Go(func() error {
		phishOut = settle(base, o.timeout, o.phishing, content)
		set.Phishing = pick(phishOut, "Phishing", staticPhishing)
		return nil
	})
	g.Go(func() error {
		urlOut = settle(base, o.timeout, o.urls, content)
		set.URLs = pick(urlOut, "URL", staticURLs)
		return nil
	})
	g.Go(func() error {
		sentOut = settle(base, o.timeout, o.sentiment, content)
		set.Sentiment = pick(sentOut, "Sentiment", staticSentiment)
		return nil
	})
	_ = g.Wait()

	status := models.APIStatus{Total: 4, Errors: []string{}}
	account := func(category string, err error, timedOut bool, latency time.Duration, signal models.Signal, fallbackReason, failure string) {
		record := FetchRecord{
			Category:  category,
			Source:    signal.SignalSource(),
			Latency:   latency,
			Succeeded: err == nil,
			Degraded:  err != nil || signal.Degraded(),
			TimedOut:  timedOut,
			Err:       err,
		}

		if record.Succeeded {
			status.Successful++
		}
		if record.Degraded {
			status.Degraded++
		} else {
			status.Primary++
		}

		switch {
		case failure != "":
			status.Errors = append(status.Errors, failure)
		case fallbackReason != "":
			status.Errors = append(status.Errors, category+": "+fallbackReason)
		}

		o.observer.ObserveFetch(record)
	}

	account(models.CategorySpam, spamOut.err, spamOut.timedOut, spamOut.latency, &set.Spam, set.Spam.FallbackReason, set.Spam.Error)
	account(models.CategoryPhishing, phishOut.err, phishOut.timedOut, phishOut.latency, &set.Phishing, set.Phishing.FallbackReason, set.Phishing.Error)
	account(models.CategoryURLs, urlOut.err, urlOut.timedOut, urlOut.latency, &set.URLs, "", set.URLs.Error)
	account(models.CategorySentiment, sentOut.err, sentOut.timedOut, sentOut.latency, &set.Sentiment, set.Sentiment.FallbackReason, set.Sentiment.Error)

	return FanOut{Signals: set, Status: status}
}
