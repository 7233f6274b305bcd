package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantDims    int
		wantModel   string
		wantErr     bool
		errContains string
	}{
		{
			name:    "nil settings returns error",
			wantErr: true,
		},
		{
			name:        "unknown provider returns error",
			settings:    &domain.EmbeddingSettings{Provider: "cohere"},
			wantErr:     true,
			errContains: "unsupported embedding provider",
		},
		{
			name:        "openai without key returns error",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:     true,
			errContains: "requires an API key",
		},
		{
			name:      "hash provider creates service",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderHash, Dimensions: 128},
			wantDims:  128,
			wantModel: "fnv-hash",
		},
		{
			name: "ollama provider uses known model dimensions",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "mxbai-embed-large",
			},
			wantDims:  1024,
			wantModel: "mxbai-embed-large",
		},
		{
			name: "ollama unknown model falls back to default dimensions",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				Model:    "my-custom-model",
			},
			wantDims:  768,
			wantModel: "my-custom-model",
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantDims:  1536,
			wantModel: "text-embedding-3-small",
		},
		{
			name: "openai dimension override",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.AIProviderOpenAI,
				APIKey:     "test-key",
				Model:      "text-embedding-3-large",
				Dimensions: 512,
			},
			wantDims:  512,
			wantModel: "text-embedding-3-large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()

			assert.Equal(t, tt.wantDims, svc.Dimensions())
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService_RateLimited(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider:          domain.AIProviderOllama,
		Model:             "nomic-embed-text",
		RequestsPerSecond: 2,
	})
	require.NoError(t, err)

	_, ok := svc.(*ratelimit.EmbeddingService)
	assert.True(t, ok)

	hashSvc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider:          domain.AIProviderHash,
		RequestsPerSecond: 2,
	})
	require.NoError(t, err)
	_, ok = hashSvc.(*ratelimit.EmbeddingService)
	assert.False(t, ok)
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderHash})
	require.NoError(t, err)
	assert.Equal(t, 384, svc.Dimensions())

	_, err = CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: "bogus"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	// Nothing listens on port 1.
	_, err = CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{}))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderHash}))
}
