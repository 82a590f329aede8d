package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("chunk %d", 1) }, "[DEBUG] chunk 1\n"},
		{"info", func() { Info("indexed %s", "a.md") }, "[INFO] indexed a.md\n"},
		{"warn", func() { Warn("skipped") }, "[WARN] skipped\n"},
		{"error", func() { Error("failed") }, "[ERROR] failed\n"},
		{"section", func() { Section("Search") }, "\n=== Search ===\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)
	Debug("a")
	Info("b")
	Warn("c")
	Section("d")
	assert.Empty(t, buf.String())

	Error("boom")
	assert.Equal(t, "[ERROR] boom\n", buf.String())
}

func TestTimed(t *testing.T) {
	buf := capture(t, true)
	Timed("search")()
	assert.True(t, strings.HasPrefix(buf.String(), "[DEBUG] search took "))
}
