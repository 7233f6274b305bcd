package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/ai"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/cli"
	"github.com/custodia-labs/ltmc/internal/chunker"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/services"
	"github.com/custodia-labs/ltmc/internal/logger"
)

const indexFile = "vectors.db"

// stores is the storage surface shared by the SQLite and in-memory backends.
type stores interface {
	ResourceStore() driven.ResourceStore
	ChatLog() driven.ChatLog
	LinkStore() driven.LinkStore
}

// initialize builds the services for one command run.
func initialize(opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, func() {}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedding service: %w", err)
	}
	chunks, err := chunker.FromSettings(settings.Chunking)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	store, index, closeStorage, err := openStorage(opts.Ephemeral, embedder.Dimensions())
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}
	logger.Debug("Using %s embeddings (%d dims), %s chunking",
		embedder.ModelName(), embedder.Dimensions(), chunks.Name())

	timeout := settings.OperationTimeout
	s := &cli.Services{
		Resource: services.NewResourceService(store.ResourceStore(), index, embedder, chunks, timeout),
		Search:   services.NewSearchService(store.ResourceStore(), index, embedder, settings.Search.TopK, timeout),
		Context:  services.NewContextService(store.LinkStore(), store.ResourceStore(), store.ChatLog(), timeout),
		Chat:     services.NewChatService(store.ChatLog(), timeout),
		Settings: settingsService,
	}

	cleanup := func() {
		if err := errors.Join(closeStorage(), embedder.Close()); err != nil {
			logger.Warn("closing: %v", err)
		}
	}
	return s, cleanup, nil
}

// openStorage opens the metadata store and vector index under the data
// directory, or in memory when ephemeral is set.
func openStorage(ephemeral bool, dims int) (stores, driven.VectorIndex, func() error, error) {
	if ephemeral {
		logger.Debug("Using in-memory storage")
		return memory.NewStore(), memory.NewVectorIndex(dims), func() error { return nil }, nil
	}

	dataDir, err := file.DataDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: resolving data directory: %w", domain.ErrStorageUnavailable, err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening metadata store: %w", err)
	}
	index, err := flat.New(filepath.Join(dataDir, indexFile), dims)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("opening vector index: %w", err)
	}
	logger.Debug("Opened storage at %s", dataDir)

	return store, index, func() error {
		return errors.Join(index.Close(), store.Close())
	}, nil
}
