// internal/api/response_helpers.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/TrustLens/internal/models"
)

// APIResponse is the envelope used by the operational endpoints.
// Analysis endpoints answer with flat bodies instead.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ClientErrorBody is the flat 4xx body of the analysis endpoints
type ClientErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ResponseHelper shapes every response body
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error writes an enveloped error
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 {
		apiError.Details = sanitizeErrorMessage(details[0])
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

func (rh *ResponseHelper) NotFound(c *gin.Context, message string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message)
}

// Analysis writes a completed analysis as-is
func (rh *ResponseHelper) Analysis(c *gin.Context, result *models.AnalysisResult) {
	c.JSON(http.StatusOK, result)
}

// ClientError writes the flat {error, code} body
func (rh *ResponseHelper) ClientError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, ClientErrorBody{Error: message, Code: code})
}

// Fallback writes the neutral 500 body so callers always get a renderable result
func (rh *ResponseHelper) Fallback(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewFallbackResult(sanitizeErrorMessage(message)))
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

var sensitiveMarkers = []string{"api_key", "apikey", "secret", "token", "bearer", "authorization"}

// sanitizeErrorMessage hides messages that may carry credentials
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return "An internal error occurred"
		}
	}
	return message
}
