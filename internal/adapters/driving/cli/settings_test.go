package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func TestSettingsShowCmd(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Hash (built-in, offline)")
	assert.Contains(t, out, "Strategy: paragraph")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSetCmd(t *testing.T) {
	s := setupTestServices(t)

	out, err := execute(t, "settings", "set", "search.top_k", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "search.top_k = 12")

	settings, err := s.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 12, settings.Search.TopK)

	out, err = execute(t, "settings", "set", "embedding.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "embedding.api_key = sk-1...cdef")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsSetCmd_Invalid(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "settings", "set", "search.top_k", "-1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = execute(t, "settings", "set", "no.such.key", "1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	s := setupTestServices(t)

	rootCmd.SetIn(strings.NewReader("2\nall-minilm\n"))
	out, err := execute(t, "settings", "embedding")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding provider configured: Ollama (local) (all-minilm)")

	settings, err := s.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, 384, settings.Embedding.Dimensions)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
}

func TestSettingsEmbeddingCmd_APIKeyRequired(t *testing.T) {
	setupTestServices(t)

	rootCmd.SetIn(strings.NewReader("3\n\n\n"))
	_, err := execute(t, "settings", "embedding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{name: "Empty input returns default", input: "", maxVal: 3, defaultVal: 1, expected: 1},
		{name: "Valid choice within range", input: "3", maxVal: 3, defaultVal: 1, expected: 3},
		{name: "Choice below minimum returns default", input: "0", maxVal: 3, defaultVal: 1, expected: 1},
		{name: "Choice above maximum returns default", input: "4", maxVal: 3, defaultVal: 1, expected: 1},
		{name: "Non-numeric returns default", input: "abc", maxVal: 3, defaultVal: 2, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseChoice(tt.input, tt.maxVal, tt.defaultVal))
		})
	}
}
