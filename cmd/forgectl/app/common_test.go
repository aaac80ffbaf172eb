package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "shorter than limit",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exactly at limit",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "truncated with ellipsis",
			input:  "hello world",
			maxLen: 8,
			want:   "hello...",
		},
		{
			name:   "tiny limit cuts without ellipsis",
			input:  "hello",
			maxLen: 2,
			want:   "he",
		},
		{
			name:   "empty string",
			input:  "",
			maxLen: 5,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncateString(tt.input, tt.maxLen))
		})
	}
}

func TestParseTimeFlag(t *testing.T) {
	t.Parallel()

	t.Run("empty value returns nil", func(t *testing.T) {
		t.Parallel()

		ts, err := parseTimeFlag("")
		require.NoError(t, err)
		assert.Nil(t, ts)
	})

	t.Run("rfc3339 timestamp", func(t *testing.T) {
		t.Parallel()

		ts, err := parseTimeFlag("2026-01-02T15:04:05Z")
		require.NoError(t, err)
		require.NotNil(t, ts)
		assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), ts.UTC())
	})

	t.Run("duration means that long ago", func(t *testing.T) {
		t.Parallel()

		ts, err := parseTimeFlag("24h")
		require.NoError(t, err)
		require.NotNil(t, ts)
		assert.WithinDuration(t, time.Now().Add(-24*time.Hour), *ts, time.Minute)
	})

	t.Run("unparseable value is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := parseTimeFlag("yesterday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RFC3339")
	})
}

func TestOutputFormatFlagValues(t *testing.T) {
	t.Parallel()

	// Explicit flag values bypass the configured default entirely.
	assert.Equal(t, FormatJSON, outputFormat(FormatJSON))
	assert.Equal(t, FormatText, outputFormat(FormatText))
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	registered := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		registered[sub.Name()] = true
	}

	for _, name := range []string{
		"auth", "config", "apps", "appconfigs", "accounts", "functions",
		"keys", "mcp", "logs", "analytics", "quota", "catalog", "version",
	} {
		assert.True(t, registered[name], "command %s is not registered", name)
	}

	debugFlag := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, debugFlag)
	assert.Equal(t, "false", debugFlag.DefValue)
}
