// internal/services/sentiment_fetcher.go
package services

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/oracle"
)

// SentimentFetcher walks a model chain and stops at the first usable answer.
type SentimentFetcher struct {
	provider oracle.Provider
	models   []string
}

func NewSentimentFetcher(provider oracle.Provider, chain []string) *SentimentFetcher {
	return &SentimentFetcher{
		provider: provider,
		models:   append([]string(nil), chain...),
	}
}

func (f *SentimentFetcher) Fetch(ctx context.Context, content string) (models.SentimentSignal, error) {
	if f.provider == nil {
		fallback := NeutralSentiment()
		fallback.FallbackReason = "no oracle provider configured"
		return fallback, nil
	}

	req := oracle.NewInferenceRequest(content)
	failures := make([]string, 0, len(f.models))

	for _, model := range f.models {
		signal, err := f.tryModel(ctx, model, req)
		if err == nil {
			return signal, nil
		}
		if ctx.Err() != nil {
			return models.SentimentSignal{}, ctx.Err()
		}
		failures = append(failures, err.Error())
	}

	fallback := NeutralSentiment()
	fallback.FallbackReason = strings.Join(failures, "; ")
	return fallback, nil
}

func (f *SentimentFetcher) tryModel(ctx context.Context, model string, req oracle.InferenceRequest) (models.SentimentSignal, error) {
	body, err := f.provider.Infer(ctx, model, req)
	if err != nil {
		return models.SentimentSignal{}, err
	}

	entries, _, err := oracle.ParseLabelScores(body)
	if err != nil {
		return models.SentimentSignal{}, apperrors.WrapError(err, model, apperrors.ErrorTypeMalformed)
	}

	top := entries[0]
	label, ok := canonicalSentiment(top.Label)
	if !ok {
		return models.SentimentSignal{}, apperrors.NewMalformedResponseError(
			fmt.Sprintf("%s: unknown sentiment label %q", model, top.Label), nil)
	}

	score := clampUnit(top.Score)
	return models.SentimentSignal{
		Label:      label,
		Score:      score,
		Confidence: score,
		Source:     modelSource(model),
	}, nil
}

// canonicalSentiment maps model-specific labels onto positive/negative/neutral.
// Handles plain names, LABEL_0..2 and "N star(s)".
func canonicalSentiment(raw string) (string, bool) {
	label := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "label_")

	switch label {
	case models.LabelPositive, models.LabelNegative, models.LabelNeutral:
		return label, true
	case "0":
		return models.LabelNegative, true
	case "1":
		return models.LabelNeutral, true
	case "2":
		return models.LabelPositive, true
	}

	var stars int
	if _, err := fmt.Sscanf(label, "%d star", &stars); err == nil {
		switch {
		case stars >= 1 && stars <= 2:
			return models.LabelNegative, true
		case stars == 3:
			return models.LabelNeutral, true
		case stars >= 4 && stars <= 5:
			return models.LabelPositive, true
		}
	}

	return "", false
}
