// internal/oracle/providers/huggingface/huggingface.go
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
	"github.com/Corphon/TrustLens/internal/oracle"
)

const (
	Name           = "huggingface"
	DefaultBaseURL = "https://api-inference.huggingface.co/models"

	// cap on the body read back from an oracle
	maxResponseBytes = 1 << 20
	// how much of an error body ends up in the error message
	maxErrorBodyChars = 200
)

func init() {
	oracle.Register(Name, func() oracle.Provider {
		return &Provider{baseURL: DefaultBaseURL}
	})
}

// Provider calls the hosted inference API, one model per URL path.
type Provider struct {
	baseURL string
	client  *http.Client
}

// Initialize reads base_url and the optional api_key.
func (p *Provider) Initialize(config map[string]string) error {
	if baseURL := strings.TrimSpace(config["base_url"]); baseURL != "" {
		p.baseURL = baseURL
	}
	p.baseURL = strings.TrimRight(p.baseURL, "/")

	u, err := url.Parse(p.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid oracle base URL %q", p.baseURL)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if apiKey := strings.TrimSpace(config["api_key"]); apiKey != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				TokenType:   "Bearer",
				AccessToken: apiKey,
			}),
			Base: http.DefaultTransport,
		}
	}
	p.client = &http.Client{Transport: transport}

	return nil
}

func (p *Provider) GetName() string {
	return Name
}

// Infer posts req to <base>/<model> and returns the raw 2xx body.
func (p *Provider) Infer(ctx context.Context, model string, req oracle.InferenceRequest) ([]byte, error) {
	if p.client == nil {
		return nil, apperrors.NewUnavailableError("provider not initialized", nil)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewProcessingError("encode inference request", err)
	}

	endpoint := p.baseURL + "/" + strings.TrimLeft(model, "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewProcessingError("build inference request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError(model, ctx.Err())
		}
		return nil, apperrors.NewUnavailableError(model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewUnavailableError(model+": read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := truncateRunes(strings.TrimSpace(string(body)), maxErrorBodyChars)
		return nil, apperrors.NewUnavailableError(fmt.Sprintf("%s: HTTP %d: %s", model, resp.StatusCode, snippet), nil)
	}

	return body, nil
}

// truncateRunes cuts s to at most n runes, marking the cut with "..."
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
