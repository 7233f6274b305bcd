package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/chunker"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/core/services"
)

const testDims = 64

// newTestPorts wires real services over in-memory storage with one stored resource.
func newTestPorts(t *testing.T) (*Ports, *domain.Resource) {
	t.Helper()
	store := memory.NewStore()
	index := memory.NewVectorIndex(testDims)
	embedder := hash.NewEmbeddingService(testDims)

	resource := services.NewResourceService(store.ResourceStore(), index, embedder,
		chunker.NewParagraph(chunker.WithChunkSize(200)), time.Second)
	search := services.NewSearchService(store.ResourceStore(), index, embedder, 5, time.Second)

	r, err := resource.Store(context.Background(), driving.StoreRequest{
		Name:    "deploy.md",
		Content: "Deploys run every Tuesday after the release review.",
		Type:    domain.ResourceTypeDocument,
	})
	require.NoError(t, err)

	return NewPorts(search, resource), r
}

func newTestApp(t *testing.T) (*App, *domain.Resource) {
	t.Helper()
	ports, r := newTestPorts(t)
	app, err := NewApp(ports, WithTopK(3))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, r
}

// send delivers msg and then every message its commands produce, depth first.
// Batches and blink ticks are skipped.
func send(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	for cmd != nil {
		next := cmd()
		switch next.(type) {
		case nil, tea.BatchMsg:
			return
		}
		if _, ok := next.(messages.RetrieveCompleted); !ok && !isAppMessage(next) {
			return
		}
		_, cmd = app.Update(next)
	}
}

func isAppMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case messages.ViewChanged, messages.ResourceSelected, messages.ResourcesLoaded,
		messages.ResourceDeleted, messages.ContentLoaded, messages.ErrorOccurred:
		return true
	}
	return false
}

func TestNewApp_ValidatesPorts(t *testing.T) {
	ports, _ := newTestPorts(t)

	_, err := NewApp(&Ports{Resource: ports.Resource})
	assert.ErrorIs(t, err, ErrMissingSearchService)

	_, err = NewApp(&Ports{Search: ports.Search})
	assert.ErrorIs(t, err, ErrMissingResourceService)
}

func TestApp_StartsOnSearch(t *testing.T) {
	ports, _ := newTestPorts(t)
	app, err := NewApp(ports)
	require.NoError(t, err)

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Recall:")
}

func TestApp_RecallThenOpenContent(t *testing.T) {
	app, r := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("release review")})
	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, app.Err())
	assert.Contains(t, app.View(), "deploy.md #0")

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, messages.ViewContent, app.CurrentView())
	assert.Equal(t, r.ID, app.contentView.ResourceID())
	assert.Contains(t, app.View(), "every Tuesday")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_TabSwitchesToResources(t *testing.T) {
	app, _ := newTestApp(t)

	send(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.ViewResources, app.CurrentView())
	assert.Contains(t, app.View(), "deploy.md")

	send(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_TabIgnoredInContent(t *testing.T) {
	app, r := newTestApp(t)
	send(app, messages.ResourceSelected{ResourceID: r.ID, Name: r.Name})
	require.Equal(t, messages.ViewContent, app.CurrentView())

	send(app, tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, messages.ViewContent, app.CurrentView())
}

func TestApp_DeleteFromResources(t *testing.T) {
	app, r := newTestApp(t)
	send(app, tea.KeyMsg{Type: tea.KeyTab})

	send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	assert.Contains(t, app.View(), "No resources stored.")
	_, err := app.ports.Resource.Get(context.Background(), r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApp_QuitKeys(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ErrorOccurredIsRecorded(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: domain.ErrStorageUnavailable})

	assert.ErrorIs(t, app.Err(), domain.ErrStorageUnavailable)
	assert.ErrorIs(t, app.searchView.Err(), domain.ErrStorageUnavailable)
}

func TestViewType_String(t *testing.T) {
	assert.Equal(t, "search", messages.ViewSearch.String())
	assert.Equal(t, "resources", messages.ViewResources.String())
	assert.Equal(t, "content", messages.ViewContent.String())
	assert.Equal(t, "unknown", messages.ViewType(99).String())
}
