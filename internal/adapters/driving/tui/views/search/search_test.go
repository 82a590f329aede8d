package search

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

type stubSearch struct {
	results []domain.SearchResult
	opts    domain.SearchOptions
	calls   int
}

func (s *stubSearch) SearchDocuments(_ context.Context, _ string, opts domain.SearchOptions) []domain.SearchResult {
	s.calls++
	s.opts = opts
	return s.results
}

func newTestView(svc *stubSearch) *View {
	v := NewView(nil, nil, svc, domain.SearchOptions{MaxResults: 3, SimilarityThreshold: 0.2})
	v.SetDimensions(100, 30)
	return v
}

func submit(t *testing.T, v *View, query string) {
	t.Helper()
	v.SetQuery(query)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestView_SubmitPassesOptions(t *testing.T) {
	svc := &stubSearch{results: []domain.SearchResult{{FilePath: "/a.md", Content: "alpha", Similarity: 0.8}}}
	v := newTestView(svc)

	submit(t, v, "  alpha  ")

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, 3, svc.opts.MaxResults)
	assert.InDelta(t, 0.2, svc.opts.SimilarityThreshold, 1e-9)
	assert.Equal(t, "alpha", v.Query())
	assert.Len(t, v.Results(), 1)
	assert.False(t, v.InputFocused(), "focus moves to results")
	assert.Contains(t, v.View(), "/a.md")
}

func TestView_BlankQueryDoesNothing(t *testing.T) {
	svc := &stubSearch{}
	v := newTestView(svc)
	v.SetQuery("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Zero(t, svc.calls)
}

func TestView_NoMatchesKeepsInputFocus(t *testing.T) {
	v := newTestView(&stubSearch{results: []domain.SearchResult{}})

	submit(t, v, "nothing")

	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "No matching notes")
	assert.Equal(t, status.StateEmpty, v.statusbar.State())
}

func TestView_NilServiceYieldsEmpty(t *testing.T) {
	v := NewView(nil, nil, nil, domain.SearchOptions{})

	submit(t, v, "q")

	assert.Empty(t, v.Results())
}

func TestView_StaleResultsIgnored(t *testing.T) {
	v := newTestView(&stubSearch{})
	v.SetQuery("new")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(messages.SearchCompleted{Query: "old", Results: []domain.SearchResult{{FilePath: "/old.md"}}})

	assert.Empty(t, v.Results())
}

func TestView_ResultsNavigationAndPreview(t *testing.T) {
	svc := &stubSearch{results: []domain.SearchResult{
		{FilePath: "/a.md", Content: "first chunk", Similarity: 0.9},
		{FilePath: "/b.md", Content: "second chunk body", Similarity: 0.7},
	}}
	v := newTestView(svc)
	submit(t, v, "chunk")

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.True(t, v.list.Expanded())

	// Esc closes the preview before leaving the view.
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, v.list.Expanded())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_NewSearchRefocusesInput(t *testing.T) {
	v := newTestView(&stubSearch{results: []domain.SearchResult{{FilePath: "/a.md"}}})
	submit(t, v, "a")
	require.False(t, v.InputFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Equal(t, status.StateReady, v.statusbar.State())
}
