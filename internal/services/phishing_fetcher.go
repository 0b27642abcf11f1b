// internal/services/phishing_fetcher.go
package services

import (
	"context"
	"strings"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/oracle"
)

// PhishingCandidateLabels are sent to the zero-shot classifier
var PhishingCandidateLabels = []string{"phishing", "scam", "legitimate", "safe", "suspicious"}

var phishingRiskLabels = map[string]bool{
	"phishing":   true,
	"scam":       true,
	"suspicious": true,
}

const phishingRiskThreshold = 0.4

// PhishingFetcher runs zero-shot classification and falls back to keyword detection.
type PhishingFetcher struct {
	provider oracle.Provider
	model    string
}

func NewPhishingFetcher(provider oracle.Provider, model string) *PhishingFetcher {
	return &PhishingFetcher{provider: provider, model: model}
}

func (f *PhishingFetcher) Fetch(ctx context.Context, content string) (models.PhishingSignal, error) {
	signal, err := f.fromOracle(ctx, content)
	if err == nil {
		return signal, nil
	}
	if ctx.Err() != nil {
		return models.PhishingSignal{}, ctx.Err()
	}

	fallback := KeywordPhishingSignal(content)
	fallback.FallbackReason = err.Error()
	return fallback, nil
}

func (f *PhishingFetcher) fromOracle(ctx context.Context, content string) (models.PhishingSignal, error) {
	if f.provider == nil {
		return models.PhishingSignal{}, apperrors.NewUnavailableError("no oracle provider configured", nil)
	}

	req := oracle.NewInferenceRequest(content).WithCandidateLabels(PhishingCandidateLabels...)
	body, err := f.provider.Infer(ctx, f.model, req)
	if err != nil {
		return models.PhishingSignal{}, err
	}

	entries, _, err := oracle.ParseZeroShot(body)
	if err != nil {
		return models.PhishingSignal{}, err
	}

	signal := phishingFromEntries(entries)
	signal.OriginalText = content
	return signal, nil
}

func phishingFromEntries(entries []oracle.LabelScore) models.PhishingSignal {
	var risk, best float64
	labels := make([]string, len(entries))
	scores := make([]float64, len(entries))

	for i, e := range entries {
		labels[i] = e.Label
		scores[i] = e.Score
		if phishingRiskLabels[strings.ToLower(e.Label)] {
			risk += e.Score
		}
		if i == 0 || e.Score > best {
			best = e.Score
		}
	}
	risk = clampUnit(risk)

	label := models.LabelSafe
	if risk > phishingRiskThreshold {
		label = models.LabelPhishing
	}

	return models.PhishingSignal{
		Score:      risk,
		Label:      label,
		Confidence: clampUnit(best),
		Source:     models.SourceZeroShot,
		Details: &models.PhishingDetails{
			AllScores: scores,
			AllLabels: labels,
			RiskScore: risk,
		},
	}
}
