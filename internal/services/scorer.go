// internal/services/scorer.go
package services

import (
	"math"
	"regexp"
	"strings"

	"github.com/Corphon/TrustLens/internal/models"
)

// Trust score weights and bounds
const (
	spamWeight          = 50.0
	phishingWeight      = 45.0
	urlWeight           = 0.25
	obviousScamPenalty  = 15.0
	perURLPenalty       = 10.0
	negativeMoodPenalty = 8.0
	negativeMoodFloor   = 0.7

	minTrustScore = 5.0
	maxTrustScore = 95.0

	lowRiskAbove    = 70
	mediumRiskAbove = 40
)

var obviousScamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)winner|won|prize|congratulations`),
	regexp.MustCompile(`(?i)free.*iphone|free.*gift|free.*money`),
	regexp.MustCompile(`(?i)click.*here.*now|claim.*now|hurry.*offer`),
	regexp.MustCompile(`(?i)credit.*card.*details|reply.*with.*details`),
}

// Score is the scorer's output
type Score struct {
	TrustScore int
	RiskLevel  string
	Categories models.Categories
	Confidence int
}

// normalized returns a copy of the signals with every score in range
func normalized(set models.SignalSet) models.SignalSet {
	set.Spam.Score = clampUnit(set.Spam.Score)
	set.Phishing.Score = clampUnit(set.Phishing.Score)
	set.Sentiment.Score = clampUnit(set.Sentiment.Score)
	set.URLs.Score = clamp(set.URLs.Score, 0, 100)
	return set
}

// ComputeScore maps a complete signal set onto the trust score, category
// scores, risk level and confidence. It is pure.
func ComputeScore(set models.SignalSet) Score {
	set = normalized(set)
	trust := int(math.Round(TrustScore(set)))

	return Score{
		TrustScore: trust,
		RiskLevel:  RiskLevelFor(trust),
		Categories: models.Categories{
			Spam:           int(math.Round(set.Spam.Score * 100)),
			Phishing:       int(math.Round(set.Phishing.Score * 100)),
			Scam:           int(math.Round(scamScore(set))),
			Misinformation: int(math.Round(misinformationScore(set))),
		},
		Confidence: int(math.Round(overallConfidence(set) * 100)),
	}
}

// TrustScore is the unrounded composite in [5, 95].
func TrustScore(set models.SignalSet) float64 {
	set = normalized(set)

	score := 100.0
	score -= set.Spam.Score * spamWeight
	score -= set.Phishing.Score * phishingWeight
	score -= set.URLs.Score * urlWeight

	keywords := strings.Join(matchedKeywords(set), " ")
	for _, pattern := range obviousScamPatterns {
		if keywords != "" && pattern.MatchString(keywords) {
			score -= obviousScamPenalty
		}
		if set.Phishing.OriginalText != "" && pattern.MatchString(set.Phishing.OriginalText) {
			score -= obviousScamPenalty
		}
	}

	score -= perURLPenalty * float64(len(set.URLs.SuspiciousURLs))

	if isNegative(set.Sentiment) && set.Sentiment.Score > negativeMoodFloor {
		score -= negativeMoodPenalty
	}

	return clamp(score, minTrustScore, maxTrustScore)
}

// RiskLevelFor buckets a trust score
func RiskLevelFor(trust int) string {
	switch {
	case trust > lowRiskAbove:
		return models.RiskLow
	case trust > mediumRiskAbove:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func matchedKeywords(set models.SignalSet) []string {
	all := make([]string, 0, len(set.Spam.MatchedKeywords)+len(set.Phishing.MatchedKeywords))
	all = append(all, set.Spam.MatchedKeywords...)
	return append(all, set.Phishing.MatchedKeywords...)
}

func isNegative(s models.SentimentSignal) bool {
	return s.Label == models.LabelNegative
}

func scamScore(set models.SignalSet) float64 {
	score := set.Spam.Score*45 + set.Phishing.Score*40
	if isNegative(set.Sentiment) {
		score += 15
	}

	var winner, action bool
	for _, k := range matchedKeywords(set) {
		if strings.Contains(k, "winner") || strings.Contains(k, "won") {
			winner = true
		}
		if strings.Contains(k, "click") || strings.Contains(k, "claim") {
			action = true
		}
	}
	if winner && action {
		score += 20
	}

	return clamp(score, 0, 100)
}

func misinformationScore(set models.SignalSet) float64 {
	mood := 5.0
	if isNegative(set.Sentiment) {
		mood = 15
	}
	return clamp(set.URLs.Score*0.4+mood, 0, 100)
}

// overallConfidence averages the three model confidences; the URL analyzer is excluded
func overallConfidence(set models.SignalSet) float64 {
	sum := 0.0
	for _, c := range []float64{set.Spam.Confidence, set.Phishing.Confidence, set.Sentiment.Confidence} {
		if c <= 0 || math.IsNaN(c) {
			c = unknownConfidence
		}
		sum += clampUnit(c)
	}
	return sum / 3
}
