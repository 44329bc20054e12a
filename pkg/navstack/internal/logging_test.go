package internal

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseLevel(raw), "%q", raw)
	}
}

func TestNewScopedID(t *testing.T) {
	a := NewScopedID("tree")
	b := NewScopedID("tree")
	assert.True(t, strings.HasPrefix(a, "tree-"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, NewID(), NewID())
}
