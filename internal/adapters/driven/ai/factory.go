package ai

import (
	"fmt"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider string // "openai" or any OpenAI-compatible endpoint
	APIKey   string
	Model    string
	BaseURL  string
}

// LLMSettings configures the completion and vision providers.
type LLMSettings struct {
	Provider    string // "groq" or "openai"
	APIKey      string
	Model       string
	VisionModel string
	BaseURL     string
	Temperature float64
}

// NewEmbeddingService creates an embedding service from settings.
func NewEmbeddingService(settings EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "", "openai":
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// NewCompletionServices creates the completion and vision services from
// settings. Both share one client; Groq and OpenAI speak the same chat API,
// differing only in base URL.
func NewCompletionServices(settings LLMSettings) (driven.CompletionService, driven.VisionService, error) {
	baseURL := settings.BaseURL
	switch settings.Provider {
	case "", "groq":
		// default base URL applies
	case "openai":
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}

	llm, err := NewGroqLLM(settings.APIKey, settings.Model, baseURL, settings.Temperature)
	if err != nil {
		return nil, nil, err
	}
	return llm, NewGroqVision(llm, settings.VisionModel), nil
}
