// internal/services/demo_service.go
package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/models"
)

const DemoModelVersion = "Demo-v2.1.0"

var demoInsightPool = []string{
	"Suspicious links detected that may lead to phishing sites",
	"Content uses emotional manipulation techniques",
	"Claims could not be cross-referenced with verified sources",
	"Language patterns suggest promotional framing",
}

// DemoAnalysisService fabricates plausible results without calling any
// oracle. It is only mounted for demos and never shares the real pipeline.
type DemoAnalysisService struct {
	mu               sync.Mutex
	rng              *rand.Rand
	maxContentLength int
}

// NewDemoAnalysisService creates a demo analyzer; a nil rng uses a random seed
func NewDemoAnalysisService(rng *rand.Rand, maxContentLength int) *DemoAnalysisService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if maxContentLength <= 0 {
		maxContentLength = config.DefaultMaxContentLength
	}
	return &DemoAnalysisService{rng: rng, maxContentLength: maxContentLength}
}

func (s *DemoAnalysisService) Analyze(_ context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := ValidateContent(req.Content, s.maxContentLength); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trust := 5 + s.rng.IntN(91)
	insights := make([]string, 0, len(demoInsightPool))
	for _, msg := range demoInsightPool {
		if s.rng.Float64() > 0.5 {
			insights = append(insights, msg)
		}
	}
	if len(insights) == 0 {
		insights = append(insights, SafeContentInsight)
	}

	return &models.AnalysisResult{
		TrustScore: trust,
		RiskLevel:  RiskLevelFor(trust),
		Categories: models.Categories{
			Spam:           s.rng.IntN(101),
			Phishing:       s.rng.IntN(101),
			Scam:           s.rng.IntN(101),
			Misinformation: s.rng.IntN(101),
		},
		Insights:       insights,
		ProcessingTime: 2.5 + s.rng.Float64()*1.5,
		Confidence:     85 + s.rng.IntN(16),
		ModelVersion:   DemoModelVersion,
	}, nil
}
