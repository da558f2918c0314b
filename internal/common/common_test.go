package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "persistence", err: fmt.Errorf("write data.json: %w", ErrPersistence), want: true},
		{name: "missing source", err: fmt.Errorf("grid: %w", ErrMissingSource), want: true},
		{name: "forwarding", err: fmt.Errorf("post: %w", ErrForwarding), want: false},
		{name: "unmatched", err: ErrUnmatchedEntry, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save changelog", inner)

	assert.Equal(t, "could not save changelog: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "only message", (&UserError{UserMessage: "only message"}).Error())

	assert.Equal(t, "could not save changelog", UserMessage(fmt.Errorf("run: %w", err)))
	assert.Equal(t, "disk full", UserMessage(inner))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "code", "KR7360750004")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"code":"KR7360750004"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
