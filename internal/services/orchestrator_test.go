// internal/services/orchestrator_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/TrustLens/internal/models"
)

type recordingObserver struct {
	mu      sync.Mutex
	records []FetchRecord
}

func (r *recordingObserver) ObserveFetch(rec FetchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func failing[T any](msg string) Fetcher[T] {
	return FetcherFunc[T](func(context.Context, string) (T, error) {
		var zero T
		return zero, errors.New(msg)
	})
}

func blocking[T any]() Fetcher[T] {
	return FetcherFunc[T](func(ctx context.Context, _ string) (T, error) {
		var zero T
		<-ctx.Done()
		// answer late on purpose; the deadline must already have won
		time.Sleep(10 * time.Millisecond)
		return zero, nil
	})
}

func TestOrchestratorAllFetchersFail(t *testing.T) {
	obs := &recordingObserver{}
	o := NewOrchestrator(
		failing[models.SpamSignal]("spam down"),
		failing[models.PhishingSignal]("phishing down"),
		failing[models.SentimentSignal]("sentiment down"),
		failing[models.URLSignal]("urls down"),
		WithObserver(obs),
	)

	fan := o.Run(context.Background(), "anything")

	assert.Equal(t, 0, fan.Status.Successful)
	assert.Equal(t, 4, fan.Status.Total)
	assert.Equal(t, 4, fan.Status.Degraded)
	assert.Equal(t, []string{"spam down", "phishing down", "urls down", "sentiment down"}, fan.Status.Errors)

	s := fan.Signals
	assert.Equal(t, 0.3, s.Spam.Score)
	assert.Equal(t, 0.3, s.Spam.Confidence)
	assert.Equal(t, models.SourceFallback, s.Spam.Source)
	assert.Equal(t, 0.3, s.Phishing.Score)
	assert.Equal(t, models.LabelNeutral, s.Sentiment.Label)
	assert.Equal(t, 0.5, s.Sentiment.Score)
	assert.Zero(t, s.URLs.Score)
	assert.NotNil(t, s.URLs.SuspiciousURLs)

	require.Len(t, obs.records, 4)
	for _, rec := range obs.records {
		assert.False(t, rec.Succeeded)
		assert.True(t, rec.Degraded)
		assert.Error(t, rec.Err)
	}
}

func TestOrchestratorTimeoutIsPerFetcher(t *testing.T) {
	p := newScriptedProvider(map[string]reply{
		testPhishingModel: {body: `{"labels":["safe","phishing"],"scores":[0.9,0.1]}`},
	})
	o := NewOrchestrator(
		blocking[models.SpamSignal](),
		NewPhishingFetcher(p, testPhishingModel),
		NewSentimentFetcher(p, testSentimentChain),
		NewURLAnalyzer(),
		WithFetchTimeout(50*time.Millisecond),
	)

	start := time.Now()
	fan := o.Run(context.Background(), "hello http://192.168.1.1/")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, "Spam analysis timeout", fan.Signals.Spam.Error)
	assert.Equal(t, models.SourceFallback, fan.Signals.Spam.Source)

	assert.Equal(t, models.SourceZeroShot, fan.Signals.Phishing.Source)
	assert.Len(t, fan.Signals.URLs.SuspiciousURLs, 1)
	assert.Equal(t, 3, fan.Status.Successful)
	assert.Contains(t, fan.Status.Errors, "Spam analysis timeout")
}

func TestOrchestratorBudgetCoversInternalRetries(t *testing.T) {
	p := newScriptedProvider(map[string]reply{
		testSpamPrimary:   {body: `[]`, delay: 40 * time.Millisecond, err: errors.New("HTTP 500")},
		testSpamAlternate: {body: `[[{"label":"toxic","score":0.9}]]`, delay: 40 * time.Millisecond},
	})
	o := NewOrchestrator(
		NewSpamFetcher(p, testSpamPrimary, testSpamAlternate),
		failing[models.PhishingSignal]("x"),
		failing[models.SentimentSignal]("x"),
		NewURLAnalyzer(),
		WithFetchTimeout(60*time.Millisecond),
	)

	fan := o.Run(context.Background(), "hello")
	assert.Equal(t, "Spam analysis timeout", fan.Signals.Spam.Error)
}

func TestOrchestratorRecoversFetcherPanic(t *testing.T) {
	o := NewOrchestrator(
		FetcherFunc[models.SpamSignal](func(context.Context, string) (models.SpamSignal, error) {
			panic("boom")
		}),
		failing[models.PhishingSignal]("x"),
		failing[models.SentimentSignal]("x"),
		NewURLAnalyzer(),
	)

	fan := o.Run(context.Background(), "hello")
	assert.Contains(t, fan.Signals.Spam.Error, "boom")
	assert.Equal(t, 1, fan.Status.Successful)
}

func TestOrchestratorIgnoresCallerCancellation(t *testing.T) {
	p := newScriptedProvider(map[string]reply{
		testSpamPrimary: {body: `[[{"label":"toxic","score":0.1}]]`, delay: 20 * time.Millisecond},
	})
	o := newTestOrchestrator(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fan := o.Run(ctx, "hello")
	assert.Equal(t, models.SourceToxicDetection, fan.Signals.Spam.Source)
}

func TestOrchestratorDegradedSignalsAreCounted(t *testing.T) {
	obs := &recordingObserver{}
	o := newTestOrchestrator(newScriptedProvider(nil), WithObserver(obs))

	fan := o.Run(context.Background(), "verify your account")

	assert.Equal(t, 4, fan.Status.Successful)
	assert.Equal(t, 1, fan.Status.Primary)
	assert.Equal(t, 3, fan.Status.Degraded)
	require.Len(t, fan.Status.Errors, 3)
	assert.Contains(t, fan.Status.Errors[0], "spam: ")
	assert.Contains(t, fan.Status.Errors[1], "phishing: ")
	assert.Contains(t, fan.Status.Errors[2], "sentiment: ")

	require.Len(t, obs.records, 4)
	assert.Equal(t, models.CategoryURLs, obs.records[2].Category)
	assert.False(t, obs.records[2].Degraded)
	assert.True(t, obs.records[0].Degraded)
	assert.Equal(t, models.SourceKeyword, obs.records[0].Source)
}

func TestOrchestratorDefaultTimeout(t *testing.T) {
	o := newTestOrchestrator(nil)
	assert.Equal(t, 15*time.Second, o.Timeout())
}
