// internal/services/spam_fetcher.go
package services

import (
	"context"
	"strings"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/oracle"
)

// SpamFetcher asks a toxicity classifier, then an alternate one, then falls
// back to keyword detection. Both remote attempts share the caller's deadline.
type SpamFetcher struct {
	provider  oracle.Provider
	primary   string
	alternate string
}

func NewSpamFetcher(provider oracle.Provider, primary, alternate string) *SpamFetcher {
	return &SpamFetcher{
		provider:  provider,
		primary:   primary,
		alternate: alternate,
	}
}

func (f *SpamFetcher) Fetch(ctx context.Context, content string) (models.SpamSignal, error) {
	signal, err := f.fromOracle(ctx, content)
	if err == nil {
		return signal, nil
	}
	if ctx.Err() != nil {
		return models.SpamSignal{}, ctx.Err()
	}

	fallback := KeywordSpamSignal(content)
	fallback.FallbackReason = err.Error()
	return fallback, nil
}

func (f *SpamFetcher) fromOracle(ctx context.Context, content string) (models.SpamSignal, error) {
	if f.provider == nil {
		return models.SpamSignal{}, apperrors.NewUnavailableError("no oracle provider configured", nil)
	}

	req := oracle.NewInferenceRequest(content)
	body, err := f.provider.Infer(ctx, f.primary, req)
	if err != nil && f.alternate != "" && ctx.Err() == nil {
		body, err = f.provider.Infer(ctx, f.alternate, req)
	}
	if err != nil {
		return models.SpamSignal{}, err
	}

	entries, shape, err := oracle.ParseLabelScores(body)
	if err != nil {
		return models.SpamSignal{}, err
	}
	return spamFromEntries(entries, shape)
}

func spamFromEntries(entries []oracle.LabelScore, shape oracle.Shape) (models.SpamSignal, error) {
	source := models.SourceToxicDetection
	if shape == oracle.ShapeFlat {
		source = models.SourceClassification
	}

	for _, e := range entries {
		label := strings.ToLower(e.Label)
		if strings.Contains(label, "toxic") || strings.Contains(label, "spam") {
			return newSpamSignal(e.Score, e.Score, source), nil
		}
	}

	// a flat single-class answer names the clean class; invert it
	if shape == oracle.ShapeFlat {
		first := entries[0]
		return newSpamSignal(1-first.Score, first.Score, source), nil
	}

	return models.SpamSignal{}, apperrors.NewMalformedResponseError("no toxic/spam label in classifier response", nil)
}

func newSpamSignal(score, confidence float64, source string) models.SpamSignal {
	score = clampUnit(score)
	label := models.LabelHam
	if score > 0.5 {
		label = models.LabelSpam
	}
	return models.SpamSignal{
		Score:      score,
		Label:      label,
		Confidence: clampUnit(confidence),
		Source:     source,
	}
}
