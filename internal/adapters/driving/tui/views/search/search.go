// Package search provides the recall view: a query input over a list of
// retrieved chunks.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// View is the recall view with input, results list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	topK          int
	ctx           context.Context

	width      int
	height     int
	err        error
	focusInput bool
}

// NewView creates a recall view. topK of zero uses the service default.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s, "Recall: ", "What should I remember?"),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		topK:          topK,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for retrieval.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the recall view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrieveCompleted:
		v.handleRetrieveCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateRetrieving)
			return v, v.retrieve(query)
		case tea.KeyEsc:
			if v.input.Value() != "" {
				v.input.Reset()
				return v, nil
			}
			return v, func() tea.Msg { return messages.Quit{} }
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case msg.Type == tea.KeyEnter:
		hit := v.list.SelectedResult()
		if hit == nil {
			return v, nil
		}
		selected := messages.ResourceSelected{ResourceID: hit.ResourceID, Name: hit.ResourceName}
		return v, func() tea.Msg { return selected }
	case msg.Type == tea.KeyEsc, keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusResults(false)
		return v, v.input.Focus()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// retrieve runs the query against the search service off the update loop.
func (v *View) retrieve(query string) tea.Cmd {
	ctx, svc, topK := v.ctx, v.searchService, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Retrieve(ctx, query, topK)
		return messages.RetrieveCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) handleRetrieveCompleted(msg messages.RetrieveCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	if len(msg.Results) > 0 {
		v.focusResults(true)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.ErrorKind(err) + ": " + err.Error())
}

// focusResults moves keyboard focus between the input and the results list.
func (v *View) focusResults(results bool) {
	v.focusInput = !results
	if results {
		v.input.Blur()
		v.statusbar.SetBindings(v.keymap.ResultsHelp())
		return
	}
	v.statusbar.SetBindings(v.keymap.InputHelp())
}

// View renders the recall view.
func (v *View) View() string {
	sections := []string{
		v.styles.Title.Render("ltmc"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// Results returns the current results.
func (v *View) Results() []domain.RetrievedChunk {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the query input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty query.
func (v *View) Reset() tea.Cmd {
	v.input.Reset()
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	v.focusResults(false)
	return v.input.Focus()
}
