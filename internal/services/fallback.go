// internal/services/fallback.go
package services

import (
	"strings"

	"github.com/Corphon/TrustLens/internal/models"
)

var spamKeywords = []string{
	"free money",
	"click here now",
	"urgent action",
	"winner selected",
	"congratulations you won",
	"limited time offer",
	"act immediately",
	"guaranteed income",
	"risk free",
	"no strings attached",
	"cash bonus",
	"work from home",
	"lose weight fast",
	"miracle cure",
}

var phishingKeywords = []string{
	"verify your account",
	"account suspended",
	"click to verify",
	"update payment information",
	"security alert",
	"unusual activity detected",
	"confirm your identity",
	"account will be locked",
	"immediate action required",
	"update billing",
	"reactivate account",
	"confirm ownership",
}

const (
	spamKeywordWeight     = 0.15
	spamKeywordThreshold  = 0.3
	spamKeywordConfidence = 0.7

	phishingKeywordWeight     = 0.2
	phishingKeywordThreshold  = 0.4
	phishingKeywordConfidence = 0.75

	// confidence of any signal substituted without evidence
	unknownConfidence = 0.3
)

// matchKeywords returns the phrases contained in the lowercased content, in list order
func matchKeywords(content string, phrases []string) []string {
	lower := strings.ToLower(content)
	matched := make([]string, 0)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	return matched
}

// KeywordSpamSignal is the local spam heuristic.
func KeywordSpamSignal(content string) models.SpamSignal {
	matched := matchKeywords(content, spamKeywords)
	score := clampUnit(float64(len(matched)) * spamKeywordWeight)

	// the threshold itself counts as spam: two phrases are enough
	label := models.LabelHam
	if score >= spamKeywordThreshold {
		label = models.LabelSpam
	}

	return models.SpamSignal{
		Score:           score,
		Label:           label,
		Confidence:      spamKeywordConfidence,
		Source:          models.SourceKeyword,
		MatchedKeywords: matched,
	}
}

// KeywordPhishingSignal is the local phishing heuristic.
func KeywordPhishingSignal(content string) models.PhishingSignal {
	matched := matchKeywords(content, phishingKeywords)
	score := clampUnit(float64(len(matched)) * phishingKeywordWeight)

	label := models.LabelSafe
	if score > phishingKeywordThreshold {
		label = models.LabelPhishing
	}

	return models.PhishingSignal{
		Score:           score,
		Label:           label,
		Confidence:      phishingKeywordConfidence,
		Source:          models.SourceKeyword,
		MatchedKeywords: matched,
	}
}

// NeutralSentiment is used once every sentiment model has failed.
func NeutralSentiment() models.SentimentSignal {
	return models.SentimentSignal{
		Label:      models.LabelNeutral,
		Score:      0.5,
		Confidence: unknownConfidence,
		Source:     models.SourceFallback,
	}
}

// Substitutes for a fetcher that errored or missed its deadline.

func staticSpam(reason string) models.SpamSignal {
	return models.SpamSignal{
		Score:      0.3,
		Label:      models.LabelHam,
		Confidence: unknownConfidence,
		Source:     models.SourceFallback,
		Error:      reason,
	}
}

func staticPhishing(reason string) models.PhishingSignal {
	return models.PhishingSignal{
		Score:      0.3,
		Label:      models.LabelSafe,
		Confidence: unknownConfidence,
		Source:     models.SourceFallback,
		Error:      reason,
	}
}

func staticSentiment(reason string) models.SentimentSignal {
	s := NeutralSentiment()
	s.Error = reason
	return s
}

func staticURLs(reason string) models.URLSignal {
	return models.URLSignal{
		Score:          0,
		SuspiciousURLs: []models.URLFinding{},
		Source:         models.SourceFallback,
		Error:          reason,
	}
}
