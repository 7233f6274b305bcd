package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/views/content"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/views/resources"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/views/search"
)

// App is the TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView    *search.View
	resourcesView *resources.View
	contentView   *content.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// Option configures an App.
type Option func(*App)

// WithTopK sets how many chunks a recall returns. Zero uses the service default.
func WithTopK(topK int) Option {
	return func(a *App) {
		a.searchView = search.NewView(a.styles, a.keymap, a.ports.Search, topK)
	}
}

// NewApp creates a TUI application over the given ports.
func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		searchView:    search.NewView(s, km, ports.Search, 0),
		resourcesView: resources.NewView(s, km, ports.Resource),
		contentView:   content.NewView(s, ports.Resource),
		currentView:   messages.ViewSearch,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.resourcesView.WithContext(ctx)
	a.contentView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ltmc - memory"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keymap.SwitchView) && a.currentView != messages.ViewContent {
			if a.currentView == messages.ViewSearch {
				return a.switchTo(messages.ViewResources)
			}
			return a.switchTo(messages.ViewSearch)
		}
		return a.forward(msg)

	case messages.ViewChanged:
		return a.switchTo(msg.View)

	case messages.ResourceSelected:
		back := a.currentView
		a.currentView = messages.ViewContent
		return a, a.contentView.SetResource(msg.ResourceID, msg.Name, back)

	case messages.RetrieveCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ResourcesLoaded, messages.ResourceDeleted:
		a.resourcesView, cmd = a.resourcesView.Update(msg)
		return a, cmd

	case messages.ContentLoaded:
		a.contentView, cmd = a.contentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewResources:
		a.resourcesView, cmd = a.resourcesView.Update(msg)
	case messages.ViewContent:
		a.contentView, cmd = a.contentView.Update(msg)
	}
	return a, cmd
}

func (a *App) switchTo(view messages.ViewType) (tea.Model, tea.Cmd) {
	a.currentView = view
	if view == messages.ViewResources {
		return a, a.resourcesView.Init()
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewResources:
		return a.resourcesView.View()
	case messages.ViewContent:
		return a.contentView.View()
	default:
		return a.searchView.View()
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.resourcesView.SetDimensions(width, height)
	a.contentView.SetDimensions(width, height)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}
