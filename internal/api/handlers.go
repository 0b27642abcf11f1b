// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/services"
	"github.com/Corphon/TrustLens/internal/utils"
)

// Handler serves the analysis and operational endpoints
type Handler struct {
	Analyzer services.Analyzer
	Demo     services.Analyzer // optional
	Oracle   *services.OracleService
	Metrics  *utils.APIMetrics
	Response *ResponseHelper

	logger *utils.Logger
}

// analyzeContentRequest keeps content as a pointer so a missing field
// and an empty string both land in validation.
type analyzeContentRequest struct {
	Content *string `json:"content"`
}

func NewHandler(
	analyzer services.Analyzer,
	demo services.Analyzer,
	oracle *services.OracleService,
	metrics *utils.APIMetrics,
	logger *utils.Logger,
) *Handler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Handler{
		Analyzer: analyzer,
		Demo:     demo,
		Oracle:   oracle,
		Metrics:  metrics,
		Response: NewResponseHelper(),
		logger:   logger,
	}
}

// AnalyzeContent scores the posted content
func (h *Handler) AnalyzeContent(c *gin.Context) {
	h.analyze(c, h.Analyzer)
}

// AnalyzeContentDemo answers with a randomized result; no oracle is called
func (h *Handler) AnalyzeContentDemo(c *gin.Context) {
	if h.Demo == nil {
		h.Response.Error(c, http.StatusNotFound, ErrorDemoUnavailable, "demo analysis is disabled")
		return
	}
	h.analyze(c, h.Demo)
}

func (h *Handler) analyze(c *gin.Context, analyzer services.Analyzer) {
	var req analyzeContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Unreadable analysis request", map[string]interface{}{
			"error":      err.Error(),
			"request_id": c.GetString(requestIDKey),
		})
		h.Response.Fallback(c, err.Error())
		return
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	result, err := analyzer.Analyze(c.Request.Context(), models.AnalysisRequest{Content: content})
	if err != nil {
		if apperrors.IsValidationError(err) {
			h.Response.ClientError(c, http.StatusBadRequest, apperrors.CodeOf(err), err.Error())
			return
		}
		h.logger.Error("Analysis failed", map[string]interface{}{
			"error":      err.Error(),
			"request_id": c.GetString(requestIDKey),
		})
		h.Response.Fallback(c, err.Error())
		return
	}

	h.Response.Analysis(c, result)
}

// GetHealth reports the oracle provider and model catalogue.
// The service answers from local fallbacks when the provider is down,
// so an unready provider is reported as degraded rather than failing.
func (h *Handler) GetHealth(c *gin.Context) {
	ready, state := h.Oracle.GetProviderStatus()
	catalogue := h.Oracle.Catalogue()

	status := "healthy"
	if !ready {
		status = "degraded"
	}

	h.Response.Success(c, gin.H{
		"status":         status,
		"provider":       h.Oracle.GetProviderName(),
		"provider_state": state,
		"models": gin.H{
			"spam":      []string{catalogue.Spam.Primary, catalogue.Spam.Alternate},
			"phishing":  catalogue.Phishing.Model,
			"sentiment": catalogue.Sentiment.Models,
		},
		"fetch_timeout": services.DefaultFetchTimeout.String(),
		"demo_enabled":  h.Demo != nil,
	})
}

// GetMetrics returns a snapshot of the in-process metrics
func (h *Handler) GetMetrics(c *gin.Context) {
	if h.Metrics == nil {
		h.Response.Success(c, gin.H{})
		return
	}
	snap, err := h.Metrics.Collector().Snapshot(c.Request.Context())
	if err != nil {
		h.Response.Error(c, http.StatusInternalServerError, ErrorInternalError, err.Error())
		return
	}
	h.Response.Success(c, snap)
}
