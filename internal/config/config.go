// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for the hosted inference models
const (
	DefaultProvider         = "huggingface"
	DefaultAPIKeyEnv        = "HUGGINGFACE_API_KEY"
	DefaultSpamPrimary      = "unitary/toxic-bert"
	DefaultSpamAlternate    = "martin-ha/toxic-comment-model"
	DefaultPhishingModel    = "facebook/bart-large-mnli"
	DefaultModelVersion     = "HuggingFace-App-v1.1.0"
	DefaultMaxContentLength = 10000
)

// DefaultSentimentModels is the sentiment chain, in priority order
var DefaultSentimentModels = []string{
	"cardiffnlp/twitter-roberta-base-sentiment-latest",
	"nlptown/bert-base-multilingual-uncased-sentiment",
	"cardiffnlp/twitter-roberta-base-sentiment",
}

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
)

// SpamModels are the toxicity classifiers, tried in order
type SpamModels struct {
	Primary   string `yaml:"primary"`
	Alternate string `yaml:"alternate"`
}

// PhishingModels names the zero-shot classifier
type PhishingModels struct {
	Model string `yaml:"model"`
}

// SentimentModels is the sentiment fallback chain
type SentimentModels struct {
	Models []string `yaml:"models"`
}

// OracleCatalogue describes which remote models back each signal.
// It is read from a YAML file; every field has a default.
type OracleCatalogue struct {
	Provider  string          `yaml:"provider"`
	BaseURL   string          `yaml:"base_url"`
	APIKeyEnv string          `yaml:"api_key_env"`
	Spam      SpamModels      `yaml:"spam"`
	Phishing  PhishingModels  `yaml:"phishing"`
	Sentiment SentimentModels `yaml:"sentiment"`
}

// AppConfig holds the whole application configuration
type AppConfig struct {
	Port             string
	DebugMode        bool
	LogLevel         string
	LogDir           string
	APIKey           string
	OracleConfigPath string
	MaxContentLength int
	ModelVersion     string
	DemoMode         bool

	Oracles OracleCatalogue
}

// Load reads .env (optional), the environment and the oracle catalogue.
func Load() (*AppConfig, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:             getEnv("PORT", "8080"),
		DebugMode:        getEnvBool("DEBUG_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogDir:           getEnv("LOG_DIR", "logs"),
		OracleConfigPath: getEnv("ORACLE_CONFIG", "oracles.yaml"),
		MaxContentLength: getEnvInt("MAX_CONTENT_LENGTH", DefaultMaxContentLength),
		ModelVersion:     getEnv("MODEL_VERSION", DefaultModelVersion),
		DemoMode:         getEnvBool("DEMO_MODE", true),
	}

	catalogue, err := LoadCatalogue(cfg.OracleConfigPath)
	if err != nil {
		return nil, err
	}
	if baseURL := getEnv("ORACLE_BASE_URL", ""); baseURL != "" {
		catalogue.BaseURL = baseURL
	}
	cfg.Oracles = *catalogue
	cfg.APIKey = getEnv(catalogue.APIKeyEnv, "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCatalogue parses the YAML catalogue at path. A missing file yields defaults.
func LoadCatalogue(path string) (*OracleCatalogue, error) {
	catalogue := &OracleCatalogue{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read oracle catalogue %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, catalogue); err != nil {
			return nil, fmt.Errorf("parse oracle catalogue %s: %w", path, err)
		}
	}

	catalogue.applyDefaults()
	return catalogue, nil
}

func (c *OracleCatalogue) applyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Spam.Primary == "" {
		c.Spam.Primary = DefaultSpamPrimary
		if c.Spam.Alternate == "" {
			c.Spam.Alternate = DefaultSpamAlternate
		}
	}
	if c.Phishing.Model == "" {
		c.Phishing.Model = DefaultPhishingModel
	}
	if c.Sentiment.Models == nil {
		c.Sentiment.Models = append([]string(nil), DefaultSentimentModels...)
	}
}

// ProviderConfig is the map handed to oracle.Provider.Initialize
func (c *AppConfig) ProviderConfig() map[string]string {
	return map[string]string{
		"api_key":  c.APIKey,
		"base_url": c.Oracles.BaseURL,
	}
}

// Validate rejects configurations the service cannot run with
func (c *AppConfig) Validate() error {
	var errs []error
	if c.MaxContentLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength))
	}
	if strings.TrimSpace(c.Oracles.Spam.Primary) == "" {
		errs = append(errs, errors.New("oracle catalogue: spam.primary is required"))
	}
	if strings.TrimSpace(c.Oracles.Phishing.Model) == "" {
		errs = append(errs, errors.New("oracle catalogue: phishing.model is required"))
	}
	if len(c.Oracles.Sentiment.Models) == 0 {
		errs = append(errs, errors.New("oracle catalogue: sentiment.models must not be empty"))
	}
	return errors.Join(errs...)
}

// InitConfig loads the configuration and makes it current
func InitConfig() (*AppConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	configMutex.Lock()
	currentConfig = cfg
	configMutex.Unlock()

	return GetCurrentConfig(), nil
}

// GetCurrentConfig returns a copy of the current configuration
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		catalogue := &OracleCatalogue{}
		catalogue.applyDefaults()
		return &AppConfig{
			Port:             "8080",
			LogLevel:         "info",
			LogDir:           "logs",
			MaxContentLength: DefaultMaxContentLength,
			ModelVersion:     DefaultModelVersion,
			DemoMode:         true,
			Oracles:          *catalogue,
		}
	}

	configCopy := *currentConfig
	configCopy.Oracles.Sentiment.Models = append([]string(nil), currentConfig.Oracles.Sentiment.Models...)
	return &configCopy
}

// getEnv returns the environment value or the default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool reads a boolean environment value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt reads an integer environment value; garbage keeps the default
func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
