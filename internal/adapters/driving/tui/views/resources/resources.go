// Package resources provides the stored resource list view for the TUI.
package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// ErrNoResourceService indicates that no resource service was provided.
var ErrNoResourceService = errors.New("resource service is required")

// View lists stored resources, newest first.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	resourceService driving.ResourceService
	ctx             context.Context

	resources    []domain.Resource
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	confirming   bool
	notice       string
	err          error
}

// NewView creates a resource list view.
func NewView(s *styles.Styles, km *keymap.KeyMap, resourceService driving.ResourceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
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

// Init loads the resource list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirming = false
	return v.load()
}

func (v *View) load() tea.Cmd {
	ctx, svc := v.ctx, v.resourceService
	return func() tea.Msg {
		if svc == nil {
			return messages.ResourcesLoaded{Err: ErrNoResourceService}
		}
		list, err := svc.List(ctx, driving.ListOptions{})
		return messages.ResourcesLoaded{Resources: list, Err: err}
	}
}

func (v *View) remove(resourceID string) tea.Cmd {
	ctx, svc := v.ctx, v.resourceService
	return func() tea.Msg {
		if svc == nil {
			return messages.ResourceDeleted{ResourceID: resourceID, Err: ErrNoResourceService}
		}
		deleted, err := svc.Delete(ctx, resourceID)
		return messages.ResourceDeleted{ResourceID: resourceID, Deleted: deleted, Err: err}
	}
}

// Update handles messages for the resource list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.ResourcesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.resources = msg.Resources
			if v.selected >= len(v.resources) {
				v.selected = max(len(v.resources)-1, 0)
			}
			v.adjustScroll()
		}
		return v, nil

	case messages.ResourceDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Deleted {
			v.notice = "Deleted " + msg.ResourceID
		} else {
			v.notice = msg.ResourceID + " was already gone"
		}
		return v, v.load()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.resources)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Open):
		if r := v.SelectedResource(); r != nil {
			selected := messages.ResourceSelected{ResourceID: r.ID, Name: r.Name}
			return v, func() tea.Msg { return selected }
		}
	case keymap.Matches(key, v.keymap.Delete):
		if v.SelectedResource() != nil {
			v.confirming = true
			v.notice = ""
		}
	case keymap.Matches(key, v.keymap.Refresh):
		v.notice = ""
		return v, v.Init()
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if msg.String() != "y" {
		return v, nil
	}
	r := v.SelectedResource()
	if r == nil {
		return v, nil
	}
	return v, v.remove(r.ID)
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, header, notice, footer
	return max(v.height-8, 1)
}

// View renders the resource list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Resources (%d)", len(v.resources))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading resources..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error [%s]: %s", domain.ErrorKind(v.err), v.err)))
	case len(v.resources) == 0:
		b.WriteString(v.styles.Muted.Render("No resources stored."))
	default:
		b.WriteString(v.renderList())
	}
	b.WriteString("\n\n")

	if v.confirming {
		if r := v.SelectedResource(); r != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf(
				"Delete %s with its %d chunks and links? [y/N]", r.Name, r.ChunkCount)))
			b.WriteString("\n")
		}
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keymap.ResourcesHelp(), "  ")))
	return b.String()
}

func (v *View) renderList() string {
	lines := make([]string, 0, v.visibleItemCount()+1)
	lines = append(lines, v.styles.Subtitle.Render(fmt.Sprintf("  %-32s %-9s %6s  %s", "NAME", "TYPE", "CHUNKS", "CREATED")))

	end := min(v.scrollOffset+v.visibleItemCount(), len(v.resources))
	for i := v.scrollOffset; i < end; i++ {
		r := &v.resources[i]
		name := r.Name
		if len([]rune(name)) > 32 {
			name = string([]rune(name)[:31]) + "…"
		}
		line := fmt.Sprintf("%-32s %-9s %6d  %s", name, r.Type, r.ChunkCount, r.CreatedAt.Local().Format("2006-01-02 15:04"))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}

	if len(v.resources) > v.visibleItemCount() {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.resources))))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Resources returns the loaded resources.
func (v *View) Resources() []domain.Resource {
	return v.resources
}

// SelectedResource returns the highlighted resource, or nil if none.
func (v *View) SelectedResource() *domain.Resource {
	if v.selected < 0 || v.selected >= len(v.resources) {
		return nil
	}
	return &v.resources[v.selected]
}

// Confirming reports whether a delete confirmation is pending.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
