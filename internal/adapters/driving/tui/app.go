package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/views/search"
)

const helpText = `Help

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search:
  (type)      Enter a question or phrase
  enter       Submit query
  j/k, ↑/↓    Navigate results
  enter, p    Toggle full chunk text
  /, n        New search
  esc         Close preview, then back to menu

Documents:
  j/k, ↑/↓    Navigate notes
  r           Reload
  x           Reset (re-index on next reindex)
  d           Remove from index
  esc         Back to menu

ctrl+c quits from anywhere.

[esc] back to menu`

// App is the root Bubbletea model. It routes messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView      *menu.View
	searchView    *search.View
	documentsView *documents.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menu.NewView(s),
		searchView:    search.NewView(s, km, ports.Search, ports.Options),
		documentsView: documents.NewView(s, km, ports.Indexing),
		currentView:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context used by every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sercha-notes"),
		a.loadStats(),
	)
}

func (a *App) loadStats() tea.Cmd {
	if a.ports.Stats == nil {
		return nil
	}
	svc, ctx := a.ports.Stats, a.ctx
	return func() tea.Msg {
		return messages.StatsLoaded{Stats: svc.GetRAGStats(ctx)}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.routeKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.StatsLoaded:
		a.menuView, cmd = a.menuView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentChanged:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, tea.Batch(cmd, a.loadStats())
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewSearch:
		return a.searchView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Load()
	case messages.ViewMenu:
		return a.loadStats()
	case messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewHelp:
		return a.styles.Normal.Render(helpText)
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Query returns the last submitted search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
}
