// Package content provides the scrollable resource text view for the TUI.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// ErrNoResourceService indicates that no resource service was provided.
var ErrNoResourceService = errors.New("resource service is required")

// View shows the reassembled text of one resource.
type View struct {
	styles          *styles.Styles
	resourceService driving.ResourceService
	ctx             context.Context

	resourceID   string
	name         string
	back         messages.ViewType
	content      string
	lines        []string
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a content view.
func NewView(s *styles.Styles, resourceService driving.ResourceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		resourceService: resourceService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetResource shows a resource and loads its content.
// Esc returns to the back view.
func (v *View) SetResource(resourceID, name string, back messages.ViewType) tea.Cmd {
	v.resourceID = resourceID
	v.name = name
	v.back = back
	v.content = ""
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	ctx, svc := v.ctx, v.resourceService
	return func() tea.Msg {
		if svc == nil {
			return messages.ContentLoaded{ResourceID: resourceID, Err: ErrNoResourceService}
		}
		text, err := svc.Content(ctx, resourceID)
		return messages.ContentLoaded{ResourceID: resourceID, Content: text, Err: err}
	}
}

// Update handles messages for the content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ContentLoaded:
		if msg.ResourceID != v.resourceID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.content = msg.Content
			v.wrapContent()
		}

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.scrollTo(v.scrollOffset - 1)
	case "down", "j":
		v.scrollTo(v.scrollOffset + 1)
	case "pgup", "ctrl+u":
		v.scrollTo(v.scrollOffset - v.visibleLines())
	case "pgdown", "ctrl+d", " ":
		v.scrollTo(v.scrollOffset + v.visibleLines())
	case "home", "g":
		v.scrollTo(0)
	case "end", "G":
		v.scrollTo(v.maxScrollOffset())
	case "esc", "q":
		back := v.back
		return v, func() tea.Msg { return messages.ViewChanged{View: back} }
	}
	return v, nil
}

func (v *View) scrollTo(offset int) {
	v.scrollOffset = max(0, min(offset, v.maxScrollOffset()))
}

// wrapContent splits content into display lines no wider than the view.
func (v *View) wrapContent() {
	if v.content == "" {
		v.lines = nil
		return
	}

	width := max(v.width-4, 20)
	raw := strings.Split(v.content, "\n")
	v.lines = make([]string, 0, len(raw))
	for _, line := range raw {
		runes := []rune(line)
		for len(runes) > width {
			v.lines = append(v.lines, string(runes[:width]))
			runes = runes[width:]
		}
		v.lines = append(v.lines, string(runes))
	}
	v.scrollTo(v.scrollOffset)
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the content view.
func (v *View) View() string {
	var b strings.Builder

	title := v.name
	if title == "" {
		title = v.resourceID
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", min(max(v.width-4, 1), 60))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err)))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.styles.Normal.Render(v.lines[i]))
			b.WriteString("\n")
		}
		if len(v.lines) > v.visibleLines() {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d", v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// ResourceID returns the resource being shown.
func (v *View) ResourceID() string {
	return v.resourceID
}

// Content returns the loaded text.
func (v *View) Content() string {
	return v.content
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
