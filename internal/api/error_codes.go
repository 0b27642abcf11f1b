// internal/api/error_codes.go
package api

import "github.com/Corphon/TrustLens/internal/services"

// API error codes
const (
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// analysis input
	ErrorContentRequired = services.CodeContentRequired
	ErrorContentTooLong  = services.CodeContentTooLong

	// demo route mounted but no demo analyzer configured
	ErrorDemoUnavailable = "DEMO_UNAVAILABLE"
)
