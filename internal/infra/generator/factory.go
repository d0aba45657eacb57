package generator

import (
	"fmt"

	"healthquiz/internal/usecase/generate"
)

// Client both drafts and reviews questions.
type Client interface {
	generate.Generator
	generate.Verifier
}

// New returns the implementation selected by cfg.Provider.
func New(cfg *Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(*cfg), nil
	case ProviderClaude:
		return NewClaude(*cfg), nil
	case ProviderNoop:
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("unknown generator type %q", cfg.Provider)
	}
}
