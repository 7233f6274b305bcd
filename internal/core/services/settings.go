package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider    = "embedding.provider"
	KeyEmbedModel       = "embedding.model"
	KeyEmbedBaseURL     = "embedding.base_url"
	KeyEmbedAPIKey      = "embedding.api_key"
	KeyEmbedDims        = "embedding.dimensions"
	KeyEmbedRPS         = "embedding.requests_per_second"
	KeyChunkStrategy    = "chunking.strategy"
	KeyChunkSize        = "chunking.size"
	KeyChunkOverlap     = "chunking.overlap"
	KeySearchTopK       = "search.top_k"
	KeyOperationTimeout = "timeouts.operation"
	KeyLogVerbose       = "log.verbose"
)

// SettingKeys returns every recognised config key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setters parse a raw value for one key into the typed value to persist.
var setters = map[string]func(string) (any, error){
	KeyEmbedProvider: func(v string) (any, error) {
		if !domain.AIProvider(v).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", v)
		}
		return v, nil
	},
	KeyEmbedModel:   nonEmpty,
	KeyEmbedBaseURL: anyString,
	KeyEmbedAPIKey:  anyString,
	KeyEmbedDims:    positiveInt,
	KeyEmbedRPS: func(v string) (any, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("expected a non-negative number, got %q", v)
		}
		return f, nil
	},
	KeyChunkStrategy: func(v string) (any, error) {
		if !domain.ChunkingStrategy(v).IsValid() {
			return nil, fmt.Errorf("unknown strategy %q", v)
		}
		return v, nil
	},
	KeyChunkSize: positiveInt,
	KeyChunkOverlap: func(v string) (any, error) {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("expected a non-negative integer, got %q", v)
		}
		return n, nil
	},
	KeySearchTopK: positiveInt,
	KeyOperationTimeout: func(v string) (any, error) {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("expected a positive duration such as 30s, got %q", v)
		}
		return d.String(), nil
	},
	KeyLogVerbose: func(v string) (any, error) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", v)
		}
		return b, nil
	},
}

func anyString(v string) (any, error) { return v, nil }

func nonEmpty(v string) (any, error) {
	if v == "" {
		return nil, fmt.Errorf("value must not be empty")
	}
	return v, nil
}

func positiveInt(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("expected a positive integer, got %q", v)
	}
	return n, nil
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case provider connectivity is not checked.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, falling back to defaults
// for missing or malformed values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.configStore.GetString(KeyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	dims := s.configStore.GetInt(KeyEmbedDims)
	if dims <= 0 {
		dims = defaultDimensions(provider, model)
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        dims,
			RequestsPerSecond: s.configStore.GetFloat(KeyEmbedRPS),
		},
		Chunking: domain.ChunkingSettings{
			Strategy: s.getStrategy(defaults.Chunking.Strategy),
			Size:     s.getInt(KeyChunkSize, defaults.Chunking.Size),
			Overlap:  s.getInt(KeyChunkOverlap, defaults.Chunking.Overlap),
		},
		Search: domain.SearchSettings{
			TopK: s.getInt(KeySearchTopK, defaults.Search.TopK),
		},
		OperationTimeout: s.getDuration(KeyOperationTimeout, defaults.OperationTimeout),
		Verbose:          s.configStore.GetBool(KeyLogVerbose),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyEmbedDims, settings.Embedding.Dimensions},
		{KeyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{KeyChunkStrategy, string(settings.Chunking.Strategy)},
		{KeyChunkSize, settings.Chunking.Size},
		{KeyChunkOverlap, settings.Chunking.Overlap},
		{KeySearchTopK, settings.Search.TopK},
		{KeyOperationTimeout, settings.OperationTimeout.String()},
		{KeyLogVerbose, settings.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(KeyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyEmbedAPIKey, err)
		}
	}

	return nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	parse, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrValidation, key, strings.Join(SettingKeys(), ", "))
	}
	parsed, err := parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrValidation, key, err)
	}
	return s.configStore.Set(key, parsed)
}

// SetEmbeddingProvider configures the embedding provider.
// The vector size follows the model unless the model is unknown.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrValidation, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrValidation, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = defaultDimensions(provider, settings.Embedding.Model)

	if s.aiValidator != nil {
		if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
			return err
		}
	}

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrValidation, settings.Embedding.Provider)
	}
	if settings.Chunking.Strategy == domain.ChunkingFixed && settings.Chunking.Overlap >= settings.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap (%d) must be smaller than chunking.size (%d)",
			domain.ErrValidation, settings.Chunking.Overlap, settings.Chunking.Size)
	}

	if s.aiValidator != nil {
		return s.aiValidator.ValidateEmbedding(&settings.Embedding)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func defaultDimensions(provider domain.AIProvider, model string) int {
	if d, ok := domain.EmbeddingDimensions()[model]; ok {
		return d
	}
	if provider == domain.AIProviderHash || provider == "" {
		return domain.DefaultAppSettings().Embedding.Dimensions
	}
	return 0
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(KeyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStrategy(defaultVal domain.ChunkingStrategy) domain.ChunkingStrategy {
	strategy := domain.ChunkingStrategy(s.configStore.GetString(KeyChunkStrategy))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}
