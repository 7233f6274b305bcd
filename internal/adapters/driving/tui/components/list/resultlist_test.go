package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func testResults() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{
			ResolvedChunk: domain.ResolvedChunk{
				VectorID: 1, ChunkID: 10, ResourceID: "r1", ResourceName: "notes.md",
				Position: 0, Content: "first\n\nparagraph",
			},
			Score: 0.912,
		},
		{
			ResolvedChunk: domain.ResolvedChunk{
				VectorID: 2, ChunkID: 11, ResourceID: "r2", Position: 3, Content: "second",
			},
			Score: 0.5,
		},
	}
}

func TestResultList_EmptyView(t *testing.T) {
	r := NewResultList(nil)

	assert.Contains(t, r.View(), "No results")
	assert.Nil(t, r.SelectedResult())
}

func TestResultList_RendersHeadingScoreAndPreview(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	out := r.View()
	assert.Contains(t, out, "Results (2)")
	assert.Contains(t, out, "notes.md #0")
	assert.Contains(t, out, "0.912")
	assert.Contains(t, out, "first paragraph")
	// Unnamed resources fall back to their id.
	assert.Contains(t, out, "r2 #3")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, r.Selected())

	r.MoveDown()
	assert.Equal(t, 1, r.Selected(), "stays on the last result")

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, r.Selected())

	r.MoveUp()
	require.NotNil(t, r.SelectedResult())
	assert.Equal(t, "r1", r.SelectedResult().ResourceID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
}
