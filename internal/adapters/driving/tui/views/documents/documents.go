// Package documents provides the indexed-notes list view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driving"
)

// ErrIndexingUnavailable is reported when the view has no indexing service.
var ErrIndexingUnavailable = errors.New("indexing service not available")

// Actions reported through messages.DocumentChanged.
const (
	ActionReset  = "reset"
	ActionRemove = "remove"
)

// View lists documents with their embedding status.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	indexing driving.IndexingService
	ctx      context.Context

	documents    []domain.Document
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	notice       string
	err          error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, indexing driving.IndexingService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		indexing:  indexing,
		ctx:       context.Background(),
		documents: []domain.Document{},
		width:     80,
		height:    24,
	}
}

// WithContext sets the context passed to the indexing service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load returns a command that fetches the document list.
func (v *View) Load() tea.Cmd {
	v.loading = true
	svc, ctx := v.indexing, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrIndexingUnavailable}
		}
		docs, err := svc.ListDocuments(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			if v.selected >= len(v.documents) {
				v.selected = max(len(v.documents)-1, 0)
			}
			v.adjustScroll()
		}
		return v, nil

	case messages.DocumentChanged:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("%s: %s", msg.Action, msg.FilePath)
		return v, v.Load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Reload):
		v.notice = ""
		return v, v.Load()
	case keymap.Matches(keyStr, v.keymap.Reset):
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.change(doc.FilePath, ActionReset)
		}
	case keymap.Matches(keyStr, v.keymap.Remove):
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.change(doc.FilePath, ActionRemove)
		}
	}
	return v, nil
}

func (v *View) change(filePath, action string) tea.Cmd {
	svc, ctx := v.indexing, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentChanged{FilePath: filePath, Action: action, Err: ErrIndexingUnavailable}
		}
		var err error
		switch action {
		case ActionReset:
			err = svc.ResetDocument(ctx, filePath)
		case ActionRemove:
			_, err = svc.RemoveDocument(ctx, filePath)
		}
		return messages.DocumentChanged{FilePath: filePath, Action: action, Err: err}
	}
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
	// title, blank, blank, notice, help
	return max(v.height-6, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No notes indexed yet. Run `sercha-notes index-dir <dir>`."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
		}
	}

	b.WriteString("\n\n")
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render(status.FormatHints(v.keymap.DocumentsHelp())))
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	titleWidth := max(v.width/3, 10)
	title := []rune(doc.Title)
	if len(title) > titleWidth {
		title = append(title[:titleWidth-3], []rune("...")...)
	}

	statusCell := v.styles.Status(doc.EmbeddingStatus).Render(fmt.Sprintf("%-10s", doc.EmbeddingStatus))
	modified := ""
	if doc.LastModified > 0 {
		modified = time.UnixMilli(doc.LastModified).Format("2006-01-02 15:04")
	}

	line := fmt.Sprintf("%s%-*s  ", indicator, titleWidth, string(title))
	if index == v.selected {
		line = v.styles.Selected.Render(line)
	} else {
		line = v.styles.Normal.Render(line)
	}
	return line + statusCell + "  " + v.styles.Muted.Render(modified+"  "+doc.FilePath)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last action confirmation.
func (v *View) Notice() string {
	return v.notice
}
