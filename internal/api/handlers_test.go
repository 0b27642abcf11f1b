// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/di"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/services"
	"github.com/Corphon/TrustLens/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAnalyzer validates like the real service and counts the calls that got past validation
type stubAnalyzer struct {
	calls  atomic.Int32
	result *models.AnalysisResult
	err    error
	panics bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := services.ValidateContent(req.Content, config.DefaultMaxContentLength); err != nil {
		return nil, err
	}
	s.calls.Add(1)
	if s.panics {
		panic("analyzer exploded")
	}
	return s.result, s.err
}

func cannedResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		TrustScore:   88,
		RiskLevel:    models.RiskLow,
		Insights:     []string{services.SafeContentInsight},
		Confidence:   90,
		ModelVersion: "test-v1",
	}
}

func testConfig() *config.AppConfig {
	return config.GetCurrentConfig()
}

func newTestRouter(cfg *config.AppConfig, analyzer services.Analyzer) (*gin.Engine, *utils.APIMetrics) {
	logger := utils.NewLogger(&bytes.Buffer{}, utils.ERROR)
	metrics := utils.NewAPIMetricsWith(utils.NewMetricsCollector(), logger)
	oracle := services.NewOracleServiceWithProvider(nil, cfg.Oracles)

	var demo services.Analyzer
	if cfg.DemoMode {
		demo = services.NewDemoAnalysisService(nil, cfg.MaxContentLength)
	}
	return NewRouter(cfg, NewHandler(analyzer, demo, oracle, metrics, logger)), metrics
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func assertFallbackBody(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body models.FallbackResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Analysis failed", body.Error)
	assert.Equal(t, 50, body.TrustScore)
	assert.Equal(t, models.RiskUnknown, body.RiskLevel)
	assert.Equal(t, models.Categories{}, body.Categories)
	assert.Equal(t, []string{models.FallbackInsight}, body.Insights)
	assert.Equal(t, 30, body.Confidence)
	assert.Equal(t, models.FallbackModelVersion, body.ModelVersion)
}

func TestAnalyzeContentBlankIsClientError(t *testing.T) {
	stub := &stubAnalyzer{result: cannedResult()}
	r, _ := newTestRouter(testConfig(), stub)

	for _, body := range []string{`{"content":""}`, `{"content":"   \n"}`, `{}`, `{"content":null}`} {
		w := post(r, "/api/analyze-content", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Content is required","code":"CONTENT_REQUIRED"}`, w.Body.String())
	}
	assert.Zero(t, stub.calls.Load())
}

func TestAnalyzeContentTooLong(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{result: cannedResult()})

	content := strings.Repeat("a", config.DefaultMaxContentLength+1)
	w := post(r, "/api/analyze-content", `{"content":"`+content+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Content too long (max 10,000 characters)","code":"CONTENT_TOO_LONG"}`, w.Body.String())
}

func TestAnalyzeContentSuccess(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{result: cannedResult()})

	w := post(r, "/api/analyze-content", `{"content":"hello world"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	body := decode(t, w)
	assert.Equal(t, float64(88), body["trustScore"])
	assert.Equal(t, models.RiskLow, body["riskLevel"])
	assert.Equal(t, "test-v1", body["modelVersion"])
	assert.NotContains(t, body, "success")
}

func TestAnalyzeContentMalformedBodyFallsBack(t *testing.T) {
	stub := &stubAnalyzer{result: cannedResult()}
	r, _ := newTestRouter(testConfig(), stub)

	for _, body := range []string{`{"content":`, ``, `{"content":42}`} {
		assertFallbackBody(t, post(r, "/api/analyze-content", body))
	}
	assert.Zero(t, stub.calls.Load())
}

func TestAnalyzeContentInternalErrorFallsBack(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{err: errors.New("scorer broke")})

	w := post(r, "/api/analyze-content", `{"content":"hello"}`)
	assertFallbackBody(t, w)
	assert.Equal(t, "scorer broke", decode(t, w)["message"])
}

func TestAnalyzeContentPanicIsRecovered(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{panics: true})

	w := post(r, "/api/analyze-content", `{"content":"hello"}`)
	assertFallbackBody(t, w)
	assert.Equal(t, "Internal server error", decode(t, w)["message"])
}

func TestAnalyzeContentEndToEndTotalOutage(t *testing.T) {
	down := func(msg string) error { return errors.New(msg) }
	orchestrator := services.NewOrchestrator(
		services.FetcherFunc[models.SpamSignal](func(context.Context, string) (models.SpamSignal, error) {
			return models.SpamSignal{}, down("spam down")
		}),
		services.FetcherFunc[models.PhishingSignal](func(context.Context, string) (models.PhishingSignal, error) {
			return models.PhishingSignal{}, down("phishing down")
		}),
		services.FetcherFunc[models.SentimentSignal](func(context.Context, string) (models.SentimentSignal, error) {
			return models.SentimentSignal{}, down("sentiment down")
		}),
		services.FetcherFunc[models.URLSignal](func(context.Context, string) (models.URLSignal, error) {
			return models.URLSignal{}, down("urls down")
		}),
	)
	analyzer := services.NewAnalysisService(orchestrator,
		services.WithLogger(utils.NewLogger(&bytes.Buffer{}, utils.ERROR)))
	r, _ := newTestRouter(testConfig(), analyzer)

	w := post(r, "/api/analyze-content", `{"content":"is this legit?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Details)
	assert.Equal(t, 0, res.Details.APIStatus.Successful)
	assert.Equal(t, 4, res.Details.APIStatus.Total)
	assert.Len(t, res.Details.APIStatus.Errors, 4)
	assert.Equal(t, models.SourceFallback, res.Details.ModelResults.Spam.Source)
	assert.GreaterOrEqual(t, res.TrustScore, 5)
	assert.LessOrEqual(t, res.TrustScore, 95)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{result: cannedResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", decode(t, w)["request_id"])
}

func TestDemoRoute(t *testing.T) {
	cfg := testConfig()
	r, _ := newTestRouter(cfg, &stubAnalyzer{result: cannedResult()})

	w := post(r, "/api/analyze-content/demo", `{"content":"demo please"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DemoModelVersion, decode(t, w)["modelVersion"])

	cfg.DemoMode = false
	r, _ = newTestRouter(cfg, &stubAnalyzer{result: cannedResult()})
	w = post(r, "/api/analyze-content/demo", `{"content":"demo please"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDemoHandlerWithoutAnalyzer(t *testing.T) {
	cfg := testConfig()
	h := NewHandler(&stubAnalyzer{}, nil, services.NewOracleServiceWithProvider(nil, cfg.Oracles), nil,
		utils.NewLogger(&bytes.Buffer{}, utils.ERROR))
	r := NewRouter(cfg, h)

	w := post(r, "/api/analyze-content/demo", `{"content":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errBody := decode(t, w)["error"].(map[string]interface{})
	assert.Equal(t, ErrorDemoUnavailable, errBody["code"])
}

func TestHealthReportsDegradedProvider(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "no provider", data["provider_state"])
	assert.Equal(t, "15s", data["fetch_timeout"])
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	r, metrics := newTestRouter(testConfig(), &stubAnalyzer{result: cannedResult()})

	post(r, "/api/analyze-content", `{"content":"hello"}`)
	post(r, "/api/analyze-content", `{"content":""}`)

	collector := metrics.Collector()
	assert.Equal(t, int64(2), collector.GetCounterValue("api_requests_total"))
	assert.Equal(t, int64(1), collector.GetCounterValue("api_requests_total", attribute.String("status_class", "2xx")))
	assert.Equal(t, int64(1), collector.GetCounterValue("api_requests_total", attribute.String("status_class", "4xx")))

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	counters := decode(t, w)["data"].(map[string]interface{})["counters"].(map[string]interface{})
	assert.Equal(t, float64(2), counters["api_requests_total"])
	assert.Equal(t, float64(1), counters["api_requests_total{endpoint=/api/analyze-content,method=POST,status_class=4xx}"])
	histograms := decode(t, w)["data"].(map[string]interface{})["histograms"].(map[string]interface{})
	assert.Contains(t, histograms, "api_request_duration_ms{endpoint=/api/analyze-content}")
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze-content", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	r, _ := newTestRouter(testConfig(), &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouterFromContainer(t *testing.T) {
	cfg := testConfig()
	c := di.NewContainer()

	_, err := SetupRouter(cfg, c)
	assert.ErrorContains(t, err, "analysis service")

	c.Register(di.ServiceAnalyzer, &stubAnalyzer{result: cannedResult()})
	_, err = SetupRouter(cfg, c)
	assert.ErrorContains(t, err, "oracle service")

	c.Register(di.ServiceOracle, services.NewOracleServiceWithProvider(nil, cfg.Oracles))
	c.Register(di.ServiceLogger, utils.NewLogger(&bytes.Buffer{}, utils.ERROR))
	r, err := SetupRouter(cfg, c)
	require.NoError(t, err)

	w := post(r, "/api/analyze-content", `{"content":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeErrorMessage(t *testing.T) {
	assert.Equal(t, "model timed out", sanitizeErrorMessage("model timed out"))
	assert.Equal(t, "An internal error occurred", sanitizeErrorMessage("invalid Bearer hf_abc"))
}
