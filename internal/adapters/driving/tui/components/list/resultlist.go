// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// linesPerResult is the height of one collapsed entry: path line and snippet line.
const linesPerResult = 2

// ResultList displays ranked chunks in a navigable list.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	expanded bool
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

// Update handles list navigation messages.
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

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No matching notes")
	}

	lines := make([]string, 0, len(r.results)+4)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	start, end := r.visibleRange()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	if r.expanded {
		if sel := r.SelectedResult(); sel != nil {
			lines = append(lines, "", r.styles.Preview.Width(max(r.width-4, 20)).Render(sel.Content))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) visibleRange() (int, int) {
	visible := (r.height - 4) / linesPerResult
	if r.expanded {
		visible /= 2
	}
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

// renderResult formats the path and score line followed by a one-line snippet.
func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := truncateLeft(result.FilePath, max(r.width-20, 10))
	score := fmt.Sprintf("%.3f", result.Similarity)

	var head string
	if index == r.selected {
		head = r.styles.Selected.Render(fmt.Sprintf("%s%s", indicator, name)) + "  " +
			r.styles.Score(result.Similarity).Render(score)
	} else {
		head = r.styles.Normal.Render(indicator+name) + "  " +
			r.styles.Score(result.Similarity).Render(score)
	}

	snippet := strings.Join(strings.Fields(result.Content), " ")
	snippet = truncateRight(snippet, max(r.width-6, 20))

	return head + "\n" + r.styles.Muted.Render("    "+snippet)
}

// truncateRight keeps the first n runes of s.
func truncateRight(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// truncateLeft keeps the last n runes of a path, preferring the file name.
func truncateLeft(path string, n int) string {
	runes := []rune(path)
	if len(runes) <= n {
		return path
	}
	base := filepath.Base(path)
	if len([]rune(base)) >= n-3 {
		return truncateRight(base, n)
	}
	return "..." + string(runes[len(runes)-n+3:])
}

// SetResults replaces the list and resets selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
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

// TogglePreview shows or hides the selected chunk in full.
func (r *ResultList) TogglePreview() {
	if len(r.results) > 0 {
		r.expanded = !r.expanded
	}
}

// Expanded reports whether the preview pane is shown.
func (r *ResultList) Expanded() bool {
	return r.expanded
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
