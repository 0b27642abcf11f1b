// internal/services/oracle_service.go
package services

import (
	"fmt"
	"sync"

	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/oracle"
	"github.com/Corphon/TrustLens/internal/utils"
)

// OracleService owns the remote provider and builds the oracle-backed fetchers.
type OracleService struct {
	mu           sync.RWMutex
	provider     oracle.Provider
	providerName string
	catalogue    config.OracleCatalogue
	isReady      bool
	readyState   string
}

// NewOracleService creates the provider named in cfg. A provider that fails
// to initialize leaves the service not ready; its fetchers then always degrade.
func NewOracleService(cfg *config.AppConfig) *OracleService {
	s := &OracleService{
		providerName: cfg.Oracles.Provider,
		catalogue:    cfg.Oracles,
	}

	provider, err := oracle.GetProvider(cfg.Oracles.Provider, cfg.ProviderConfig())
	if err != nil {
		s.readyState = fmt.Sprintf("provider %s unavailable: %v", cfg.Oracles.Provider, err)
		utils.GetLogger().Warn("Oracle provider not initialized", map[string]interface{}{
			"provider": cfg.Oracles.Provider,
			"error":    err.Error(),
		})
		return s
	}

	s.provider = provider
	s.isReady = true
	s.readyState = "ready"
	if cfg.APIKey == "" {
		s.readyState = "ready (anonymous)"
	}
	return s
}

// NewOracleServiceWithProvider wraps an already initialized provider
func NewOracleServiceWithProvider(provider oracle.Provider, catalogue config.OracleCatalogue) *OracleService {
	s := &OracleService{
		provider:   provider,
		catalogue:  catalogue,
		isReady:    provider != nil,
		readyState: "ready",
	}
	if provider != nil {
		s.providerName = provider.GetName()
	} else {
		s.readyState = "no provider"
	}
	return s
}

// GetProviderStatus reports readiness and a human readable state
func (s *OracleService) GetProviderStatus() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReady, s.readyState
}

func (s *OracleService) GetProviderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providerName
}

// Catalogue returns the model catalogue in use
func (s *OracleService) Catalogue() config.OracleCatalogue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogue
}

func (s *OracleService) SpamFetcher() *SpamFetcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewSpamFetcher(s.provider, s.catalogue.Spam.Primary, s.catalogue.Spam.Alternate)
}

func (s *OracleService) PhishingFetcher() *PhishingFetcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewPhishingFetcher(s.provider, s.catalogue.Phishing.Model)
}

func (s *OracleService) SentimentFetcher() *SentimentFetcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewSentimentFetcher(s.provider, s.catalogue.Sentiment.Models)
}

// NewOrchestrator wires the three oracle fetchers and the URL analyzer
func (s *OracleService) NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	return NewOrchestrator(s.SpamFetcher(), s.PhishingFetcher(), s.SentimentFetcher(), NewURLAnalyzer(), opts...)
}
