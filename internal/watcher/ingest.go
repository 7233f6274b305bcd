package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/logger"
)

// Ingestor applies file changes to the resource store.
// It remembers which resource holds each path for the lifetime of the ingestor.
type Ingestor struct {
	resources driving.ResourceService

	mu      sync.Mutex
	byPath  map[string]string
	applied int
}

// NewIngestor creates an ingestor that stores into resources.
func NewIngestor(resources driving.ResourceService) *Ingestor {
	return &Ingestor{
		resources: resources,
		byPath:    make(map[string]string),
	}
}

// Apply stores, replaces or deletes the resource for one change.
// Returns the resource id now holding the path, or empty after a delete.
func (i *Ingestor) Apply(ctx context.Context, change Change) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if previous, ok := i.byPath[change.Path]; ok {
		if _, err := i.resources.Delete(ctx, previous); err != nil {
			return "", fmt.Errorf("replacing %s: %w", change.Path, err)
		}
		delete(i.byPath, change.Path)
	}

	if change.Type == ChangeDeleted {
		i.applied++
		return "", nil
	}

	res, err := i.resources.Store(ctx, driving.StoreRequest{
		Name:    filepath.Base(change.Path),
		Content: change.Content,
		Type:    change.ResourceType,
	})
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", change.Path, err)
	}
	i.byPath[change.Path] = res.ID
	i.applied++
	return res.ID, nil
}

// Run applies changes until the channel closes or ctx is done.
// Failures are logged and do not stop the loop. The callback, if set,
// is invoked after every successfully applied change.
func (i *Ingestor) Run(ctx context.Context, changes <-chan Change, onApplied func(Change, string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			id, err := i.Apply(ctx, change)
			if err != nil {
				logger.Warn("%v", err)
				continue
			}
			if onApplied != nil {
				onApplied(change, id)
			}
		}
	}
}

// Applied returns the number of changes applied so far.
func (i *Ingestor) Applied() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.applied
}
