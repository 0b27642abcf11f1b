// internal/services/url_analyzer.go
package services

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/Corphon/TrustLens/internal/models"
)

var (
	urlPattern         = regexp.MustCompile(`https?://[^\s]+`)
	ipv4HostPattern    = regexp.MustCompile(`^(?:\d{1,3}\.){3}\d{1,3}$`)
	urlKeywordsPattern = regexp.MustCompile(`(?i)urgent|winner|free|prize|claim|verify|suspended|security|alert|update.*payment|confirm.*identity`)
)

var shortenerDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"goo.gl",
	"ow.ly",
	"short.link",
	"tly.com",
}

var abuseTLDs = []string{".tk", ".ml", ".ga", ".cf", ".pw"}

const (
	longHostLength     = 40
	digitHyphenCeiling = 10
)

// hostRule is one domain check; the first matching rule decides.
type hostRule struct {
	match  func(host string) bool
	reason string
	risk   string
	score  float64
}

var hostRules = []hostRule{
	{
		match:  ipv4HostPattern.MatchString,
		reason: "IP address used instead of domain",
		risk:   models.RiskHigh,
		score:  80,
	},
	{
		match:  isShortener,
		reason: "URL shortener detected",
		risk:   models.RiskMedium,
		score:  45,
	},
	{
		match: func(host string) bool {
			for _, tld := range abuseTLDs {
				if strings.HasSuffix(host, tld) {
					return true
				}
			}
			return false
		},
		reason: "Free/suspicious domain extension",
		risk:   models.RiskHigh,
		score:  65,
	},
	{
		match:  func(host string) bool { return len(host) >= longHostLength },
		reason: "Extremely long domain (possible spoofing)",
		risk:   models.RiskMedium,
		score:  50,
	},
	{
		match: func(host string) bool {
			n := strings.Count(host, "-")
			for _, r := range host {
				if r >= '0' && r <= '9' {
					n++
				}
			}
			return n >= digitHyphenCeiling
		},
		reason: "Many numbers/hyphens in domain",
		risk:   models.RiskMedium,
		score:  35,
	},
}

func isShortener(host string) bool {
	for _, d := range shortenerDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// URLAnalyzer scores the links in a text locally. It never calls out.
type URLAnalyzer struct{}

func NewURLAnalyzer() *URLAnalyzer {
	return &URLAnalyzer{}
}

func (a *URLAnalyzer) Fetch(_ context.Context, content string) (models.URLSignal, error) {
	return AnalyzeURLs(content), nil
}

// AnalyzeURLs extracts http(s) literals and scores each one.
func AnalyzeURLs(content string) models.URLSignal {
	found := urlPattern.FindAllString(content, -1)
	signal := models.URLSignal{
		SuspiciousURLs: []models.URLFinding{},
		URLCount:       len(found),
		Source:         models.SourceURLAnalysis,
	}
	if len(found) == 0 {
		return signal
	}

	var total float64
	for _, raw := range found {
		finding, suspicious := inspectURL(raw)
		if !suspicious {
			continue
		}
		signal.SuspiciousURLs = append(signal.SuspiciousURLs, finding)
		total += finding.Score
	}

	signal.Score = clamp(total/float64(len(found)), 0, 100)
	signal.CleanURLs = len(found) - len(signal.SuspiciousURLs)
	return signal
}

func inspectURL(raw string) (models.URLFinding, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return models.URLFinding{
			URL:       raw,
			Reason:    "Invalid URL format",
			RiskLevel: models.RiskMedium,
			Score:     40,
		}, true
	}

	host := strings.ToLower(u.Hostname())
	for _, rule := range hostRules {
		if rule.match(host) {
			return models.URLFinding{
				URL:       raw,
				Domain:    host,
				Reason:    rule.reason,
				RiskLevel: rule.risk,
				Score:     rule.score,
			}, true
		}
	}

	if urlKeywordsPattern.MatchString(raw) {
		return models.URLFinding{
			URL:       raw,
			Domain:    host,
			Reason:    "Contains suspicious keywords",
			RiskLevel: models.RiskHigh,
			Score:     60,
		}, true
	}

	return models.URLFinding{}, false
}
