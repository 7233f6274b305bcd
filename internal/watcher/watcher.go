// Package watcher turns filesystem changes under a directory into
// resource store operations.
//
// A Watcher emits Change values for created, updated and deleted files.
// An Ingestor applies them to a ResourceService, replacing the stored
// resource of a file whenever its content changes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/extract"
	"github.com/custodia-labs/ltmc/internal/logger"
)

// DefaultMaxFileSize is the largest file read into a resource.
const DefaultMaxFileSize = 1 << 20

// ChangeType describes what happened to a file.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a single file event with the file's content for creates and updates.
type Change struct {
	Type         ChangeType
	Path         string
	Content      string
	ResourceType domain.ResourceType
}

// Watcher watches a directory tree for file changes.
type Watcher struct {
	root        string
	maxFileSize int64

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a watcher rooted at dir.
func New(dir string) *Watcher {
	return &Watcher{root: dir, maxFileSize: DefaultMaxFileSize}
}

// Watch starts watching and returns a channel of changes.
// The channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(fsw, w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	changes := make(chan Change)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) && !isHidden(event.Name) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := addTree(fsw, event.Name); err != nil {
							logger.Warn("watching %s: %v", event.Name, err)
						}
						continue
					}
				}
				change := w.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// handleFsEvent converts an fsnotify event into a Change.
// Returns nil for events that should be ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if isHidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		content, ok := w.readText(event.Name)
		if !ok {
			return nil
		}
		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{
			Type:         changeType,
			Path:         event.Name,
			Content:      content,
			ResourceType: ResourceTypeFor(event.Name),
		}
	default:
		return nil
	}
}

// readText returns the extracted text of a regular file within the size
// limit. Files with no extractable text are skipped.
func (w *Watcher) readText(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 || info.Size() > w.maxFileSize {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	text, err := extract.Text(path, data)
	if err != nil {
		logger.Debug("watch: skipping %s: %v", path, err)
		return "", false
	}
	return text, true
}

// addTree watches dir and every non-hidden directory below it.
func addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".rs": true, ".java": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true,
	".rb": true, ".sh": true, ".sql": true, ".kt": true, ".swift": true, ".cs": true,
}

// ResourceTypeFor infers the resource type from a file name.
func ResourceTypeFor(path string) domain.ResourceType {
	base := strings.ToLower(filepath.Base(path))
	if codeExtensions[filepath.Ext(base)] {
		return domain.ResourceTypeCode
	}
	if strings.Contains(base, "todo") {
		return domain.ResourceTypeTodo
	}
	return domain.ResourceTypeDocument
}
