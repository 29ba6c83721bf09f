package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
)

// NewProvider creates a provider based on configuration. An empty provider name
// disables AI scoring and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "perplexity":
		var op *OpenAIProvider
		op, err = NewPerplexityProvider(config)
		p = op

	case "openai":
		var op *OpenAIProvider
		op, err = NewOpenAIProvider(config)
		p = op

	case "anthropic", "claude":
		var ap *AnthropicProvider
		ap, err = NewAnthropicProvider(config)
		p = ap

	case "ollama":
		var lp *OllamaProvider
		lp, err = NewOllamaProvider(config)
		p = lp

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q (supported: perplexity, openai, anthropic, ollama): %w", config.Provider, model.ErrInvalidInput)
	}

	// A failed constructor leaves a typed nil in p
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Embedder turns a sentence into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder creates the embedder named by the similarity config
func NewEmbedder(sim model.SimilarityConfig, http model.HTTPConfig) (Embedder, error) {
	config := Config{
		Model:      sim.EmbeddingModel,
		APIKey:     sim.APIKey,
		BaseURL:    sim.BaseURL,
		HTTPProxy:  http.HTTPProxy,
		HTTPSProxy: http.HTTPSProxy,
		NoProxy:    http.NoProxy,
	}

	switch strings.ToLower(sim.EmbeddingProvider) {
	case "openai", "":
		e, err := NewOpenAIEmbedder(config)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "ollama":
		return NewOllamaEmbedder(config), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: openai, ollama): %w", sim.EmbeddingProvider, model.ErrInvalidInput)
	}
}
