// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/di"
	"github.com/Corphon/TrustLens/internal/services"
	"github.com/Corphon/TrustLens/internal/utils"
)

// SetupRouter builds the engine from the services registered in the container
func SetupRouter(cfg *config.AppConfig, container *di.Container) (*gin.Engine, error) {
	analyzer, err := di.Resolve[services.Analyzer](container, di.ServiceAnalyzer)
	if err != nil {
		return nil, fmt.Errorf("analysis service not initialized: %w", err)
	}
	oracleService, err := di.Resolve[*services.OracleService](container, di.ServiceOracle)
	if err != nil {
		return nil, fmt.Errorf("oracle service not initialized: %w", err)
	}
	metrics, _ := di.ResolveOptional[*utils.APIMetrics](container, di.ServiceMetrics)
	logger, ok := di.ResolveOptional[*utils.Logger](container, di.ServiceLogger)
	if !ok {
		logger = utils.GetLogger()
	}

	var demo services.Analyzer
	if cfg.DemoMode {
		if d, ok := di.ResolveOptional[services.Analyzer](container, di.ServiceDemo); ok {
			demo = d
		}
	}

	handler := NewHandler(analyzer, demo, oracleService, metrics, logger)
	return NewRouter(cfg, handler), nil
}

// NewRouter mounts handler's routes on a fresh engine
func NewRouter(cfg *config.AppConfig, handler *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(handler.logger, handler.Metrics))
	r.Use(Recovery(handler.logger, handler.Response))
	r.Use(corsMiddleware())

	r.NoRoute(func(c *gin.Context) {
		handler.Response.NotFound(c, "route not found")
	})

	api := r.Group("/api")
	{
		api.POST("/analyze-content", handler.AnalyzeContent)
		if cfg.DemoMode {
			api.POST("/analyze-content/demo", handler.AnalyzeContentDemo)
		}

		api.GET("/health", handler.GetHealth)
		api.GET("/metrics", handler.GetMetrics)
	}

	return r
}
