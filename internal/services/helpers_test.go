// internal/services/helpers_test.go
package services

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/oracle"
)

type reply struct {
	body  string
	err   error
	delay time.Duration
}

// scriptedProvider answers per model; unknown models are unavailable.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  map[string]reply
	calls    []string
	requests []oracle.InferenceRequest
}

func newScriptedProvider(replies map[string]reply) *scriptedProvider {
	return &scriptedProvider{replies: replies}
}

func (p *scriptedProvider) Initialize(map[string]string) error { return nil }
func (p *scriptedProvider) GetName() string                   { return "scripted" }

func (p *scriptedProvider) Infer(ctx context.Context, model string, req oracle.InferenceRequest) ([]byte, error) {
	p.mu.Lock()
	p.calls = append(p.calls, model)
	p.requests = append(p.requests, req)
	r, ok := p.replies[model]
	p.mu.Unlock()

	if !ok {
		return nil, apperrors.NewUnavailableError(model+": HTTP 503: loading", nil)
	}
	if r.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, apperrors.NewTimeoutError(model, ctx.Err())
		case <-time.After(r.delay):
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (p *scriptedProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

const (
	testSpamPrimary   = "unitary/toxic-bert"
	testSpamAlternate = "martin-ha/toxic-comment-model"
	testPhishingModel = "facebook/bart-large-mnli"
)

var testSentimentChain = []string{
	"cardiffnlp/twitter-roberta-base-sentiment-latest",
	"nlptown/bert-base-multilingual-uncased-sentiment",
	"cardiffnlp/twitter-roberta-base-sentiment",
}

func newTestOrchestrator(p oracle.Provider, opts ...OrchestratorOption) *Orchestrator {
	return NewOrchestrator(
		NewSpamFetcher(p, testSpamPrimary, testSpamAlternate),
		NewPhishingFetcher(p, testPhishingModel),
		NewSentimentFetcher(p, testSentimentChain),
		NewURLAnalyzer(),
		opts...,
	)
}
