// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// linesPerResult is the rendered height of one result: heading plus preview.
const linesPerResult = 2

// ResultList displays retrieved chunks in a navigable list.
type ResultList struct {
	results  []domain.RetrievedChunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	visible := (r.height - 2) / (linesPerResult + 1)
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

// renderResult formats one hit as "name #position  score" over a preview line.
func (r *ResultList) renderResult(index int, hit *domain.RetrievedChunk) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := hit.ResourceName
	if name == "" {
		name = hit.ResourceID
	}
	heading := truncate(fmt.Sprintf("%s #%d", name, hit.Position), max(r.width-16, 10))
	score := fmt.Sprintf("%.3f", hit.Score)

	var headLine string
	if index == r.selected {
		headLine = r.styles.Selected.Render(indicator+heading) + "  " + r.styles.Score.Render(score)
	} else {
		headLine = r.styles.Normal.Render(indicator+heading) + "  " + r.styles.Muted.Render(score)
	}

	preview := truncate(strings.Join(strings.Fields(hit.Content), " "), max(r.width-6, 20))
	return headLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.RetrievedChunk) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.RetrievedChunk {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected result, or nil if the list is empty.
func (r *ResultList) SelectedResult() *domain.RetrievedChunk {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
