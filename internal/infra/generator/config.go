package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"healthquiz/pkg/config"
)

// Provider names accepted in GENERATOR_TYPE.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderNoop   = "noop"
)

// Config holds settings shared by the generator implementations.
type Config struct {
	Provider string
	APIKey   string

	// Model drafts questions; VerifierModel reviews them.
	Model         string
	VerifierModel string

	MaxTokens int
	Timeout   time.Duration

	// MaxInputRunes caps the article body sent to the model.
	MaxInputRunes int

	// BaseURL overrides the API endpoint. Empty uses the provider default.
	BaseURL string
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderNoop:
		return nil
	case ProviderOpenAI, ProviderClaude:
	default:
		return fmt.Errorf("unknown generator type %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s generator requires an API key", c.Provider)
	}
	if c.Model == "" || c.VerifierModel == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxInputRunes <= 0 {
		return fmt.Errorf("max input runes must be positive, got %d", c.MaxInputRunes)
	}
	return nil
}

// LoadConfig reads GENERATOR_* settings and the provider's API key.
//
// Environment variables:
//   - GENERATOR_TYPE: openai (default), claude or noop
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY
//   - GENERATOR_MODEL, VERIFIER_MODEL: provider-specific defaults
//   - GENERATOR_TIMEOUT: per-call timeout (default 60s)
//   - GENERATOR_MAX_INPUT: article runes sent to the model (default 12000)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Provider:      strings.ToLower(config.GetEnvString("GENERATOR_TYPE", ProviderOpenAI)),
		MaxTokens:     config.GetEnvInt("GENERATOR_MAX_TOKENS", 2048),
		Timeout:       config.GetEnvDuration("GENERATOR_TIMEOUT", 60*time.Second),
		MaxInputRunes: config.GetEnvInt("GENERATOR_MAX_INPUT", 12000),
	}

	var defModel, defVerifier string
	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.APIKey = config.GetEnvString("OPENAI_API_KEY", "")
		defModel, defVerifier = openai.GPT4o, openai.GPT4
	case ProviderClaude:
		cfg.APIKey = config.GetEnvString("ANTHROPIC_API_KEY", "")
		defModel = string(anthropic.ModelClaudeSonnet4_5_20250929)
		defVerifier = defModel
	}
	cfg.Model = config.GetEnvString("GENERATOR_MODEL", defModel)
	cfg.VerifierModel = config.GetEnvString("VERIFIER_MODEL", defVerifier)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator configuration: %w", err)
	}
	return cfg, nil
}
