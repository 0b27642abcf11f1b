// internal/app/app.go
package app

import (
	"errors"

	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/di"
	"github.com/Corphon/TrustLens/internal/services"
	"github.com/Corphon/TrustLens/internal/utils"

	// registers the default oracle provider
	_ "github.com/Corphon/TrustLens/internal/oracle/providers/huggingface"
)

// Services is everything the HTTP layer and the CLI need
type Services struct {
	Oracle   *services.OracleService
	Analyzer *services.AnalysisService
	Demo     *services.DemoAnalysisService // nil unless demo mode is on
	Metrics  *utils.APIMetrics
	Logger   *utils.Logger
}

// Build creates the analysis pipeline for cfg.
// Fetch records go to both the structured log and the metrics collector.
func Build(cfg *config.AppConfig, logger *utils.Logger, metrics *utils.APIMetrics) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	if metrics == nil {
		metrics = utils.NewAPIMetrics()
	}

	oracleService := services.NewOracleService(cfg)
	if ready, state := oracleService.GetProviderStatus(); !ready {
		logger.Warn("Running on local fallbacks only", map[string]interface{}{
			"provider": oracleService.GetProviderName(),
			"state":    state,
		})
	}

	observer := services.MultiObserver{
		services.NewLogObserver(logger.Zerolog()),
		services.NewMetricsObserver(metrics),
	}
	orchestrator := oracleService.NewOrchestrator(services.WithObserver(observer))

	s := &Services{
		Oracle: oracleService,
		Analyzer: services.NewAnalysisService(orchestrator,
			services.WithMaxContentLength(cfg.MaxContentLength),
			services.WithModelVersion(cfg.ModelVersion),
			services.WithMetrics(metrics),
			services.WithLogger(logger),
		),
		Metrics: metrics,
		Logger:  logger,
	}
	if cfg.DemoMode {
		s.Demo = services.NewDemoAnalysisService(nil, cfg.MaxContentLength)
	}
	return s, nil
}

// InitServices builds the pipeline and registers it in the container
// under the di.Service* names.
func InitServices(cfg *config.AppConfig, c *di.Container) (*Services, error) {
	s, err := Build(cfg, utils.GetLogger(), nil)
	if err != nil {
		return nil, err
	}
	s.Register(c)
	return s, nil
}

// Register puts every service into c
func (s *Services) Register(c *di.Container) {
	c.Register(di.ServiceOracle, s.Oracle)
	c.Register(di.ServiceAnalyzer, s.Analyzer)
	c.Register(di.ServiceMetrics, s.Metrics)
	c.Register(di.ServiceLogger, s.Logger)
	if s.Demo != nil {
		c.Register(di.ServiceDemo, s.Demo)
	} else {
		c.Remove(di.ServiceDemo)
	}
}
