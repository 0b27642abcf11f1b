// internal/oracle/interface.go
package oracle

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrUnknownProvider is returned for an unregistered provider name
var ErrUnknownProvider = errors.New("unknown oracle provider")

// InferenceOptions are provider-side execution options
type InferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// InferenceRequest is the body sent to a hosted text classifier
type InferenceRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Options    InferenceOptions       `json:"options"`
}

// NewInferenceRequest builds a request that waits for cold models
func NewInferenceRequest(inputs string) InferenceRequest {
	return InferenceRequest{
		Inputs:  inputs,
		Options: InferenceOptions{WaitForModel: true},
	}
}

// WithCandidateLabels sets zero-shot candidate labels
func (r InferenceRequest) WithCandidateLabels(labels ...string) InferenceRequest {
	if r.Parameters == nil {
		r.Parameters = make(map[string]interface{})
	}
	r.Parameters["candidate_labels"] = labels
	return r
}

// Provider is a remote text classification service. Infer returns the raw
// response body of a 2xx reply; any other outcome is an error.
type Provider interface {
	Initialize(config map[string]string) error
	GetName() string
	Infer(ctx context.Context, model string, req InferenceRequest) ([]byte, error)
}

// ProviderFactory creates an uninitialized provider
type ProviderFactory func() Provider

var (
	providersMu sync.RWMutex
	providers   = make(map[string]ProviderFactory)
)

// Register registers a provider factory
func Register(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// GetProvider creates and initializes the named provider
func GetProvider(name string, config map[string]string) (Provider, error) {
	providersMu.RLock()
	factory, exists := providers[name]
	providersMu.RUnlock()
	if !exists {
		return nil, errors.Join(ErrUnknownProvider, errors.New(name))
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders returns registered provider names, sorted
func ListProviders() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
