// internal/services/insights.go
package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Corphon/TrustLens/internal/models"
)

const (
	maxInsights = 5

	SafeContentInsight = "Content appears relatively safe based on comprehensive analysis"
)

var shoutingPattern = regexp.MustCompile(`[A-Z]{8,}`)

type insightCheck func(set models.SignalSet, content string) (string, bool)

// insightChecklist is evaluated in order; order is priority.
var insightChecklist = []insightCheck{
	func(set models.SignalSet, _ string) (string, bool) {
		if set.Spam.Score <= 0.6 {
			return "", false
		}
		return fmt.Sprintf("High spam probability (%d%%) - contains promotional language patterns", percent(set.Spam.Score)), true
	},
	func(set models.SignalSet, _ string) (string, bool) {
		if set.Phishing.Score <= 0.6 {
			return "", false
		}
		return fmt.Sprintf("Potential phishing attempt detected (%d%%) - uses urgency/security language", percent(set.Phishing.Score)), true
	},
	func(set models.SignalSet, _ string) (string, bool) {
		n := len(set.URLs.SuspiciousURLs)
		if n == 0 {
			return "", false
		}
		return fmt.Sprintf("Found %d suspicious URL(s) - exercise caution when clicking", n), true
	},
	func(set models.SignalSet, _ string) (string, bool) {
		if !isNegative(set.Sentiment) || set.Sentiment.Score <= 0.8 {
			return "", false
		}
		return "Highly negative sentiment - may use fear-based manipulation tactics", true
	},
	func(_ models.SignalSet, content string) (string, bool) {
		return "Very short message - typical characteristic of automated spam", utf8.RuneCountInString(content) < 50
	},
	func(_ models.SignalSet, content string) (string, bool) {
		return "Excessive capitalization detected - common spam indicator", shoutingPattern.MatchString(content)
	},
	func(_ models.SignalSet, content string) (string, bool) {
		return "High punctuation density - possible urgency manipulation",
			sentenceCount(content) > 10 && utf8.RuneCountInString(content) < 200
	},
}

// GenerateInsights lists triggered checks in checklist order, at most five.
func GenerateInsights(set models.SignalSet, content string) []string {
	set = normalized(set)

	insights := make([]string, 0, maxInsights)
	for _, check := range insightChecklist {
		if len(insights) == maxInsights {
			break
		}
		if msg, ok := check(set, content); ok {
			insights = append(insights, msg)
		}
	}

	if len(insights) == 0 {
		insights = append(insights, SafeContentInsight)
	}
	return insights
}

// sentenceCount counts segments split on . ! ? including empty ones
func sentenceCount(content string) int {
	return strings.Count(content, ".") + strings.Count(content, "!") + strings.Count(content, "?") + 1
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}
