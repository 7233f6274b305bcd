package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateEmbedding_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	// nil config returns nil (nothing to validate)
	assert.NoError(t, validator.ValidateEmbedding(nil))
}

func TestConfigValidator_ValidateEmbedding_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()
	config := &domain.EmbeddingSettings{
		Provider: "",
		Model:    "test-model",
	}

	assert.NoError(t, validator.ValidateEmbedding(config))
}

func TestConfigValidator_ValidateEmbedding_Hash(t *testing.T) {
	validator := NewConfigValidator()
	config := &domain.EmbeddingSettings{Provider: domain.AIProviderHash, Dimensions: 16}

	assert.NoError(t, validator.ValidateEmbedding(config))
}
