package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/tui/keymap"
)

func TestBar_States(t *testing.T) {
	tests := []struct {
		name  string
		state State
		count int
		msg   string
		want  string
	}{
		{"ready", StateReady, 0, "", "Ready"},
		{"searching", StateSearching, 0, "", "Embedding query..."},
		{"one result", StateResults, 1, "", "1 chunk"},
		{"many results", StateResults, 4, "", "4 chunks"},
		{"empty", StateEmpty, 0, "", "No matches"},
		{"error with message", StateError, 0, "boom", "Error: boom"},
		{"error without message", StateError, 0, "", "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(120)
			b.SetState(tt.state)
			b.SetResultCount(tt.count)
			b.SetMessage(tt.msg)

			assert.Contains(t, b.View(), tt.want)
		})
	}
}

func TestBar_HintsFollowState(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	assert.Contains(t, b.View(), "enter: search")

	b.SetState(StateResults)
	b.SetResultCount(2)
	assert.Contains(t, b.View(), "/: new search")
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateError)
	b.SetResultCount(3)

	b.Clear()

	assert.Equal(t, StateReady, b.State())
	assert.Zero(t, b.ResultCount())
}

func TestFormatHints(t *testing.T) {
	km := keymap.DefaultKeyMap()

	assert.Equal(t, "r: reload | d: remove", FormatHints([]key.Binding{km.Reload, km.Remove}))
}
