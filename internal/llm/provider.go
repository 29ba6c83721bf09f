// Package llm talks to AI scoring services: chat models that judge a health claim,
// and embedding models used for semantic deduplication.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Provider defines the interface for AI scoring services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze judges a single claim: category, verification status, trust score and cited evidence
	Analyze(ctx context.Context, claim string) (*model.Analysis, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds AI provider configuration
type Config struct {
	// Provider name: "perplexity", "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 800,
	}
}

// ConfigFromModel converts the ai and http config sections to llm.Config
func ConfigFromModel(ai model.AIConfig, http model.HTTPConfig) Config {
	return Config{
		Provider:   ai.Provider,
		Model:      ai.Model,
		APIKey:     ai.APIKey,
		BaseURL:    ai.BaseURL,
		Timeout:    ai.Timeout,
		MaxTokens:  ai.MaxTokens,
		HTTPProxy:  http.HTTPProxy,
		HTTPSProxy: http.HTTPSProxy,
		NoProxy:    http.NoProxy,
	}
}

const systemPrompt = "You are a careful medical fact-checker. You judge health claims against published research and answer only with JSON."

// BuildPrompt constructs the analysis prompt for a claim
func BuildPrompt(claim string) string {
	return fmt.Sprintf(`Analyze this health claim and provide a detailed analysis.

Claim: %s

Provide:
1. category: one of Nutrition, Medicine, Mental Health, Fitness, Alternative Medicine
2. verification_status: one of Verified, Questionable, Debunked
3. trust_score: a number from 0 to 100 reflecting how well published research supports the claim
4. scientific_evidence: a list of relevant studies (title or URL), empty if none

Format the response as a single JSON object with exactly these keys: category, verification_status, trust_score, scientific_evidence.`, claim)
}

// rawAnalysis tolerates the shapes models actually return: numbers as strings,
// evidence as plain strings or as objects.
type rawAnalysis struct {
	Category           string            `json:"category"`
	VerificationStatus string            `json:"verification_status"`
	TrustScore         json.RawMessage   `json:"trust_score"`
	ScientificEvidence []json.RawMessage `json:"scientific_evidence"`
}

// ErrUnparseable is returned when a model answer contains no usable analysis
var ErrUnparseable = errors.New("unparseable analysis")

// ParseAnalysis extracts the JSON analysis object from a model answer. Markdown code
// fences and surrounding prose are ignored. A missing or non-numeric trust score is an error.
func ParseAnalysis(answer, provider string) (*model.Analysis, error) {
	start := strings.IndexByte(answer, '{')
	end := strings.LastIndexByte(answer, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in answer", ErrUnparseable)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(answer[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	score, err := parseScore(raw.TrustScore)
	if err != nil {
		return nil, err
	}

	return &model.Analysis{
		Category:           model.ParseCategory(raw.Category),
		VerificationStatus: model.ParseStatus(raw.VerificationStatus),
		TrustScore:         model.ClampScore(score),
		ScientificEvidence: parseEvidence(raw.ScientificEvidence),
		Provider:           provider,
	}, nil
}

func parseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing trust_score", ErrUnparseable)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: trust_score %s is not a number", ErrUnparseable, raw)
}

func parseEvidence(items []json.RawMessage) []string {
	out := []string{}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range []string{"title", "url", "name", "study"} {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				out = append(out, strings.TrimSpace(v))
				break
			}
		}
	}
	return out
}

// truncate shortens an upstream error body for messages
func truncate(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > 200 {
		return string(body[:200]) + "..."
	}
	return string(body)
}
