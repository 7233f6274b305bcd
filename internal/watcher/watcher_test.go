package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ltmc/internal/chunker"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/core/services"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"file.txt", false},
		{".hidden", true},
		{"dir/.env", true},
		{".git/config", true},
		{"/a/b/c.go", false},
		{"./notes.md", false},
		{"../notes.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, domain.ResourceTypeCode, ResourceTypeFor("/src/main.go"))
	assert.Equal(t, domain.ResourceTypeCode, ResourceTypeFor("App.TSX"))
	assert.Equal(t, domain.ResourceTypeTodo, ResourceTypeFor("TODO.md"))
	assert.Equal(t, domain.ResourceTypeDocument, ResourceTypeFor("notes.md"))
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name           string
		setupFile      bool
		setupDir       bool
		setupHidden    bool
		setupBinary    bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   ChangeType
	}{
		{name: "create file", setupFile: true, operation: fsnotify.Create, expectedChange: true, expectedType: ChangeCreated},
		{name: "write file", setupFile: true, operation: fsnotify.Write, expectedChange: true, expectedType: ChangeUpdated},
		{name: "remove file", operation: fsnotify.Remove, expectedChange: true, expectedType: ChangeDeleted},
		{name: "rename file", operation: fsnotify.Rename, expectedChange: true, expectedType: ChangeDeleted},
		{name: "chmod ignored", setupFile: true, operation: fsnotify.Chmod},
		{name: "directory ignored", setupDir: true, operation: fsnotify.Create},
		{name: "hidden file ignored", setupHidden: true, operation: fsnotify.Create},
		{name: "binary file ignored", setupBinary: true, operation: fsnotify.Write},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var path string

			switch {
			case tt.setupDir:
				path = filepath.Join(dir, "sub")
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.setupHidden:
				path = filepath.Join(dir, ".hidden.txt")
				require.NoError(t, os.WriteFile(path, []byte("hidden"), 0o644))
			case tt.setupBinary:
				path = filepath.Join(dir, "blob.bin")
				require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644))
			case tt.setupFile:
				path = filepath.Join(dir, "notes.md")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
			default:
				path = filepath.Join(dir, "removed.md")
			}

			change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if !tt.expectedChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, path, change.Path)
			if tt.expectedType != ChangeDeleted {
				assert.Equal(t, "content", change.Content)
				assert.Equal(t, domain.ResourceTypeDocument, change.ResourceType)
			}
		})
	}
}

func TestHandleFsEvent_ExtractsHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><p>Standup at <b>ten</b></p></body></html>"), 0o644))

	change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	require.NotNil(t, change)
	assert.Equal(t, "Standup at ten", change.Content)
}

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "new.md")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("fresh note"), 0o644)
	}()

	select {
	case change := <-changes:
		assert.Equal(t, path, change.Path)
		assert.NotEqual(t, ChangeDeleted, change.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}

	cancel()
	for range changes {
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).Watch(context.Background())
	assert.Error(t, err)
}

func newTestResources() *services.ResourceService {
	store := memory.NewStore()
	return services.NewResourceService(store.ResourceStore(), memory.NewVectorIndex(64),
		hash.NewEmbeddingService(64), chunker.NewParagraph(), time.Second)
}

func TestIngestor_Apply(t *testing.T) {
	resources := newTestResources()
	ing := NewIngestor(resources)
	ctx := context.Background()

	first, err := ing.Apply(ctx, Change{
		Type: ChangeCreated, Path: "/w/notes.md", Content: "v1", ResourceType: domain.ResourceTypeDocument,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := ing.Apply(ctx, Change{
		Type: ChangeUpdated, Path: "/w/notes.md", Content: "v2", ResourceType: domain.ResourceTypeDocument,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = resources.Get(ctx, first)
	assert.ErrorIs(t, err, domain.ErrNotFound, "the previous version is replaced")

	content, err := resources.Content(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "v2", content)

	id, err := ing.Apply(ctx, Change{Type: ChangeDeleted, Path: "/w/notes.md"})
	require.NoError(t, err)
	assert.Empty(t, id)

	list, err := resources.List(ctx, driving.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 3, ing.Applied())
}

func TestIngestor_Run(t *testing.T) {
	ing := NewIngestor(newTestResources())
	changes := make(chan Change, 3)
	changes <- Change{Type: ChangeCreated, Path: "a.md", Content: "alpha", ResourceType: domain.ResourceTypeDocument}
	changes <- Change{Type: ChangeCreated, Path: "b.md", Content: "  ", ResourceType: domain.ResourceTypeDocument}
	changes <- Change{Type: ChangeDeleted, Path: "a.md"}
	close(changes)

	var seen []string
	ing.Run(context.Background(), changes, func(c Change, _ string) {
		seen = append(seen, c.Path)
	})

	assert.Equal(t, []string{"a.md", "a.md"}, seen, "the blank file fails validation and is skipped")
	assert.Equal(t, 2, ing.Applied())
}
