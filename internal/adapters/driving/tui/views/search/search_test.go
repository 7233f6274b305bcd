package search

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results   []domain.RetrievedChunk
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockSearchService) Search(context.Context, string, int) ([]domain.VectorHit, error) {
	return nil, m.err
}

func (m *mockSearchService) SearchVector(context.Context, []float32, int) ([]domain.VectorHit, error) {
	return nil, m.err
}

func (m *mockSearchService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

func testResults() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{ResolvedChunk: domain.ResolvedChunk{VectorID: 1, ResourceID: "r1", ResourceName: "plan.md", Content: "ship it"}, Score: 0.9},
		{ResolvedChunk: domain.ResolvedChunk{VectorID: 2, ResourceID: "r2", ResourceName: "todo.txt", Content: "review"}, Score: 0.4},
	}
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

// submit types a query, presses enter and feeds the command's result back.
func submit(t *testing.T, v *View, query string) *View {
	t.Helper()
	v = typeText(v, query)
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_RetrieveShowsResults(t *testing.T) {
	svc := &mockSearchService{results: testResults()}
	v := NewView(nil, nil, svc, 3)
	v.SetDimensions(100, 30)

	v = submit(t, v, "release plan")

	assert.Equal(t, "release plan", svc.lastQuery)
	assert.Equal(t, 3, svc.lastTopK)
	assert.Len(t, v.Results(), 2)
	assert.False(t, v.InputFocused(), "focus moves to results")
	assert.Contains(t, v.View(), "plan.md #0")
}

func TestView_BlankQueryIsIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{}, 0)

	v = typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_EnterOnResultSelectsResource(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{results: testResults()}, 0)
	v = submit(t, v, "q")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ResourceSelected{ResourceID: "r2", Name: "todo.txt"}, cmd())
}

func TestView_NewQueryReturnsToInput(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{results: testResults()}, 0)
	v = submit(t, v, "q")
	require.False(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, v.InputFocused())
}

func TestView_NoResultsKeepsInputFocus(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{}, 0)

	v = submit(t, v, "nothing")

	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "No results")
}

func TestView_RetrieveError(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{err: domain.ErrStorageUnavailable}, 0)
	v.SetDimensions(120, 30)

	v = submit(t, v, "q")

	assert.ErrorIs(t, v.Err(), domain.ErrStorageUnavailable)
	assert.Contains(t, v.View(), "storage_unavailable")
}

func TestView_MissingServiceReportsError(t *testing.T) {
	v := NewView(nil, nil, nil, 0)

	v = submit(t, v, "q")

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_EscClearsThenQuits(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{}, 0)
	v = typeText(v, "draft")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Empty(t, v.Query())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{results: testResults()}, 0)
	v = submit(t, v, "q")

	v.Reset()

	assert.Empty(t, v.Query())
	assert.Empty(t, v.Results())
	assert.True(t, v.InputFocused())
}
