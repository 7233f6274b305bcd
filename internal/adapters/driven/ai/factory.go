// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ltmc settings set embedding.provider <provider>' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Remote providers are throttled to settings.RequestsPerSecond.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrValidation)
	}
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%w: %s requires an API key", domain.ErrValidation, settings.Provider)
		}
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrValidation, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderHash:
		return hash.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		svc, err := createOllamaEmbedding(settings)
		if err != nil {
			return nil, err
		}
		return ratelimit.Wrap(svc, settings.RequestsPerSecond), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAIEmbedding(settings)
		if err != nil {
			return nil, err
		}
		return ratelimit.Wrap(svc, settings.RequestsPerSecond), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrValidation, settings.Provider)
	}
}

// modelDimensions returns the configured override, else the known size for the model.
func modelDimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := modelDimensions(settings)
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: modelDimensions(settings),
	})
}
