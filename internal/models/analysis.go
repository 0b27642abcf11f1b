// internal/models/analysis.go
package models

// Signal categories
const (
	CategorySpam      = "spam"
	CategoryPhishing  = "phishing"
	CategorySentiment = "sentiment"
	CategoryURLs      = "urls"
)

// Signal labels
const (
	LabelSpam     = "spam"
	LabelHam      = "ham"
	LabelPhishing = "phishing"
	LabelSafe     = "safe"
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Risk levels
const (
	RiskLow     = "low"
	RiskMedium  = "medium"
	RiskHigh    = "high"
	RiskUnknown = "unknown"
)

// Signal sources that are not derived from a remote model name
const (
	SourceToxicDetection = "huggingface-toxic-detection"
	SourceClassification = "huggingface-classification"
	SourceZeroShot       = "huggingface-bart-classification"
	SourceKeyword        = "keyword-detection"
	SourceFallback       = "fallback"
	SourceURLAnalysis    = "url-analysis"
)

// AnalysisRequest is the client payload
type AnalysisRequest struct {
	Content string `json:"content"`
}

// Signal is implemented by every per-category signal
type Signal interface {
	SignalSource() string
	// Degraded reports whether the signal came from a local fallback
	Degraded() bool
}

// SpamSignal is the spam/toxicity assessment
type SpamSignal struct {
	Score           float64  `json:"score"`
	Label           string   `json:"label"`
	Confidence      float64  `json:"confidence"`
	Source          string   `json:"source"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
	FallbackReason  string   `json:"fallbackReason,omitempty"`
	Error           string   `json:"error,omitempty"`
}

func (s *SpamSignal) SignalSource() string { return s.Source }
func (s *SpamSignal) Degraded() bool {
	return s.Source == SourceKeyword || s.Source == SourceFallback
}

// PhishingDetails carries the raw zero-shot distribution
type PhishingDetails struct {
	AllScores []float64 `json:"allScores"`
	AllLabels []string  `json:"allLabels"`
	RiskScore float64   `json:"riskScore"`
}

// PhishingSignal is the phishing/scam assessment
type PhishingSignal struct {
	Score           float64          `json:"score"`
	Label           string           `json:"label"`
	Confidence      float64          `json:"confidence"`
	Source          string           `json:"source"`
	OriginalText    string           `json:"originalText,omitempty"`
	MatchedKeywords []string         `json:"matchedKeywords,omitempty"`
	Details         *PhishingDetails `json:"details,omitempty"`
	FallbackReason  string           `json:"fallbackReason,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func (s *PhishingSignal) SignalSource() string { return s.Source }
func (s *PhishingSignal) Degraded() bool {
	return s.Source == SourceKeyword || s.Source == SourceFallback
}

// SentimentSignal is the sentiment assessment
type SentimentSignal struct {
	Label          string  `json:"label"`
	Score          float64 `json:"score"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source"`
	FallbackReason string  `json:"fallbackReason,omitempty"`
	Error          string  `json:"error,omitempty"`
}

func (s *SentimentSignal) SignalSource() string { return s.Source }
func (s *SentimentSignal) Degraded() bool       { return s.Source == SourceFallback }

// URLFinding is one suspicious URL
type URLFinding struct {
	URL       string  `json:"url"`
	Domain    string  `json:"domain,omitempty"`
	Reason    string  `json:"reason"`
	RiskLevel string  `json:"riskLevel"`
	Score     float64 `json:"score"`
}

// URLSignal is the local URL heuristic assessment
type URLSignal struct {
	Score          float64      `json:"score"`
	SuspiciousURLs []URLFinding `json:"suspiciousUrls"`
	URLCount       int          `json:"urlCount"`
	CleanURLs      int          `json:"cleanUrls"`
	Source         string       `json:"source"`
	Error          string       `json:"error,omitempty"`
}

func (s *URLSignal) SignalSource() string { return s.Source }
func (s *URLSignal) Degraded() bool       { return s.Source == SourceFallback }

// SignalSet holds exactly one signal per category
type SignalSet struct {
	Spam      SpamSignal
	Phishing  PhishingSignal
	Sentiment SentimentSignal
	URLs      URLSignal
}

// Categories are the per-category risk percentages
type Categories struct {
	Spam           int `json:"spam"`
	Phishing       int `json:"phishing"`
	Scam           int `json:"scam"`
	Misinformation int `json:"misinformation"`
}

// ModelResults are the raw model signals
type ModelResults struct {
	Spam      SpamSignal      `json:"spam"`
	Phishing  PhishingSignal  `json:"phishing"`
	Sentiment SentimentSignal `json:"sentiment"`
}

// APIStatus is fan-out bookkeeping; diagnostic only
type APIStatus struct {
	Successful int      `json:"successful"`
	Total      int      `json:"total"`
	Primary    int      `json:"primary"`
	Degraded   int      `json:"degraded"`
	Errors     []string `json:"errors"`
}

// AnalysisDetails exposes the raw signals behind a result
type AnalysisDetails struct {
	URLAnalysis  URLSignal    `json:"urlAnalysis"`
	ModelResults ModelResults `json:"modelResults"`
	APIStatus    APIStatus    `json:"apiStatus"`
}

// AnalysisResult is the response of a successful analysis
type AnalysisResult struct {
	TrustScore     int              `json:"trustScore"`
	RiskLevel      string           `json:"riskLevel"`
	Categories     Categories       `json:"categories"`
	Insights       []string         `json:"insights"`
	ProcessingTime float64          `json:"processingTime"`
	Confidence     int              `json:"confidence"`
	ModelVersion   string           `json:"modelVersion"`
	Details        *AnalysisDetails `json:"details,omitempty"`
}

// FallbackResult is returned with HTTP 500 when analysis itself failed
type FallbackResult struct {
	Error        string     `json:"error"`
	Message      string     `json:"message"`
	TrustScore   int        `json:"trustScore"`
	RiskLevel    string     `json:"riskLevel"`
	Categories   Categories `json:"categories"`
	Insights     []string   `json:"insights"`
	Confidence   int        `json:"confidence"`
	ModelVersion string     `json:"modelVersion"`
}

const (
	FallbackModelVersion = "Fallback-v1.0.0"
	FallbackInsight      = "Analysis temporarily unavailable - using fallback methods"
)

// NewFallbackResult builds the neutral result for an internal failure
func NewFallbackResult(message string) FallbackResult {
	return FallbackResult{
		Error:        "Analysis failed",
		Message:      message,
		TrustScore:   50,
		RiskLevel:    RiskUnknown,
		Insights:     []string{FallbackInsight},
		Confidence:   30,
		ModelVersion: FallbackModelVersion,
	}
}
