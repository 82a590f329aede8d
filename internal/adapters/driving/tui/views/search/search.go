// Package search provides the query and results view for the TUI.
package search

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// View is the search view: a query input, the ranked chunks and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     textinput.Model
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	opts          domain.SearchOptions
	ctx           context.Context

	query      string
	width      int
	height     int
	focusInput bool
}

// NewView creates a new search view. opts are applied to every query.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	opts domain.SearchOptions,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask your notes..."
	ti.CharLimit = 512
	ti.Width = 50
	ti.Focus()

	return &View{
		styles:        s,
		keymap:        km,
		input:         ti,
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		opts:          opts,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context passed to the search service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if !v.focusInput && v.list.Expanded() {
			v.list.TogglePreview()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.list.SetResults(nil)
		v.statusbar.Clear()
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Preview):
		v.list.TogglePreview()
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// submit returns a command running the query, or nil for a blank query.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}

	v.query = query
	v.statusbar.SetState(status.StateSearching)

	svc, ctx, opts := v.searchService, v.ctx, v.opts
	return func() tea.Msg {
		if svc == nil {
			return messages.SearchCompleted{Query: query, Results: []domain.SearchResult{}}
		}
		return messages.SearchCompleted{Query: query, Results: svc.SearchDocuments(ctx, query, opts)}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Query != v.query {
		return
	}

	v.list.SetResults(msg.Results)
	v.statusbar.SetResultCount(len(msg.Results))
	if len(msg.Results) == 0 {
		v.statusbar.SetState(status.StateEmpty)
		return
	}

	v.statusbar.SetState(status.StateResults)
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	label := v.styles.Title.Render("Search: ")
	field := v.styles.InputField.Render(v.input.View())
	//nolint:misspell // lipgloss.Center is the library constant
	header := lipgloss.JoinHorizontal(lipgloss.Center, label, field)

	body := ""
	if v.list.Count() > 0 || v.statusbar.State() == status.StateEmpty {
		body = v.list.View()
	}

	// Keep the status bar pinned to the bottom row.
	used := lipgloss.Height(header) + lipgloss.Height(body) + 2
	gap := v.height - used
	if gap < 1 {
		gap = 1
	}

	return header + "\n\n" + body + strings.Repeat("\n", gap) + v.statusbar.View()
}

// SetDimensions resizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-14, 20)
	v.list.SetDimensions(width, height-5)
	v.statusbar.SetWidth(width)
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// Results returns the results currently shown.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the selected result index.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// InputFocused reports whether keystrokes go to the query input.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// SetQuery replaces the query input text.
func (v *View) SetQuery(q string) {
	v.input.SetValue(q)
}
