// internal/services/analysis_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Corphon/TrustLens/internal/config"
	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/utils"
)

// Client error codes
const (
	CodeContentRequired = "CONTENT_REQUIRED"
	CodeContentTooLong  = "CONTENT_TOO_LONG"
)

// Analyzer turns content into an AnalysisResult
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

// ValidateContent rejects blank or oversized content before any fetch.
// Length is counted in characters, not bytes.
func ValidateContent(content string, maxLength int) error {
	if strings.TrimSpace(content) == "" {
		return apperrors.NewValidationErrorWithCode(CodeContentRequired, "Content is required")
	}
	if maxLength > 0 && utf8.RuneCountInString(content) > maxLength {
		return apperrors.NewValidationErrorWithCode(CodeContentTooLong,
			fmt.Sprintf("Content too long (max %s characters)", groupThousands(maxLength)))
	}
	return nil
}

func groupThousands(n int) string {
	s := fmt.Sprint(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AnalysisService runs the real pipeline: fan-out, scoring, insights.
type AnalysisService struct {
	orchestrator     *Orchestrator
	maxContentLength int
	modelVersion     string
	metrics          *utils.APIMetrics
	logger           *utils.Logger
}

// AnalysisOption configures an AnalysisService
type AnalysisOption func(*AnalysisService)

func WithMaxContentLength(n int) AnalysisOption {
	return func(s *AnalysisService) { s.maxContentLength = n }
}

func WithModelVersion(v string) AnalysisOption {
	return func(s *AnalysisService) {
		if v != "" {
			s.modelVersion = v
		}
	}
}

func WithMetrics(m *utils.APIMetrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

func WithLogger(l *utils.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewAnalysisService(orchestrator *Orchestrator, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		orchestrator:     orchestrator,
		maxContentLength: config.DefaultMaxContentLength,
		modelVersion:     config.DefaultModelVersion,
		logger:           utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze validates content, fans out to every fetcher and scores the result.
// Only validation errors are returned; oracle failures degrade the signals.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := ValidateContent(req.Content, s.maxContentLength); err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.Debug("Starting analysis", map[string]interface{}{
		"content_length": utf8.RuneCountInString(req.Content),
	})

	fan := s.orchestrator.Run(ctx, req.Content)
	score := ComputeScore(fan.Signals)
	insights := GenerateInsights(fan.Signals, req.Content)
	elapsed := time.Since(start)

	signals := fan.Signals
	result := &models.AnalysisResult{
		TrustScore:     score.TrustScore,
		RiskLevel:      score.RiskLevel,
		Categories:     score.Categories,
		Insights:       insights,
		ProcessingTime: elapsed.Seconds(),
		Confidence:     score.Confidence,
		ModelVersion:   s.modelVersion,
		Details: &models.AnalysisDetails{
			URLAnalysis: signals.URLs,
			ModelResults: models.ModelResults{
				Spam:      signals.Spam,
				Phishing:  signals.Phishing,
				Sentiment: signals.Sentiment,
			},
			APIStatus: fan.Status,
		},
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(result.RiskLevel, result.TrustScore, elapsed)
	}
	s.logger.Info("Analysis completed", map[string]interface{}{
		"trust_score":     result.TrustScore,
		"risk_level":      result.RiskLevel,
		"processing_time": result.ProcessingTime,
		"successful_apis": fan.Status.Successful,
		"degraded":        fan.Status.Degraded,
	})

	return result, nil
}
