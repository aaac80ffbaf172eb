package client_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/appforge-io/forgectl/pkg/client"
)

func TestToScreamingSnake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"gmail", "GMAIL"},
		{"Hacker News", "HACKER_NEWS"},
		{"GitHub/Create Repository", "GIT_HUB_CREATE_REPOSITORY"},
		{"getPet", "GET_PET"},
		{"listHTTPServers", "LIST_HTTP_SERVERS"},
		{"v2.1-beta", "V2_1_BETA"},
		{"already_SNAKE", "ALREADY_SNAKE"},
		{"a--b__c", "A_B_C"},
		{"  padded  ", "PADDED"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, client.ToScreamingSnake(tt.input), "input %q", tt.input)
	}
}

func TestIsValidAppName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		valid bool
	}{
		{"GMAIL", true},
		{"HACKER_NEWS", true},
		{"APP2", true},
		{"gmail", false},
		{"G-MAIL", false},
		{"GMAIL__X", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, client.IsValidAppName(tt.name), "name %q", tt.name)
	}
}

func TestBuildFunctionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GMAIL__SEND_EMAIL", client.BuildFunctionName("GMAIL", "SEND_EMAIL"))

	// Already-prefixed names pass through, so building twice is safe.
	assert.Equal(t, "GMAIL__SEND_EMAIL", client.BuildFunctionName("GMAIL", "GMAIL__SEND_EMAIL"))
}

func TestParseAppNameFromFunctionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GMAIL", client.ParseAppNameFromFunctionName("GMAIL__SEND_EMAIL"))
	assert.Equal(t, "A", client.ParseAppNameFromFunctionName("A__B__C"))
	assert.Equal(t, "GMAIL", client.ParseAppNameFromFunctionName("GMAIL"))
}

func TestGenerateDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"GMAIL__SEND_EMAIL", "Gmail: Send Email"},
		{"HACKER_NEWS__TOP_STORIES", "Hacker News: Top Stories"},
		{"GMAIL", "Gmail"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, client.GenerateDisplayName(tt.input), "input %q", tt.input)
	}
}

func TestTruncateIfTooLarge(t *testing.T) {
	t.Parallel()

	t.Run("small values pass through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short", client.TruncateIfTooLarge("short", 100))

		exact := strings.Repeat("a", 100)
		assert.Equal(t, exact, client.TruncateIfTooLarge(exact, 100))
	})

	t.Run("large values are cut with a marker", func(t *testing.T) {
		t.Parallel()
		large := strings.Repeat("a", 600)
		truncated := client.TruncateIfTooLarge(large, 500)

		assert.True(t, strings.HasPrefix(truncated, strings.Repeat("a", 400)))
		assert.True(t, strings.HasSuffix(truncated, "... [truncated, size=600]"))
		assert.Less(t, len(truncated), 500)
	})

	t.Run("cut lands on a rune boundary", func(t *testing.T) {
		t.Parallel()
		large := strings.Repeat("€", 200) // 600 bytes
		truncated := client.TruncateIfTooLarge(large, 500)

		assert.True(t, utf8.ValidString(truncated))
		assert.True(t, strings.HasSuffix(truncated, "[truncated, size=600]"))
	})
}
