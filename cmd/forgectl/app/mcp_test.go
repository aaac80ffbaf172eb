package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineTransportType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		serverURL     string
		transportFlag string
		want          string
	}{
		{
			name:          "explicit sse wins over url",
			serverURL:     "https://example.com/mcp",
			transportFlag: transportSSE,
			want:          transportSSE,
		},
		{
			name:          "explicit streamable wins over url",
			serverURL:     "https://example.com/sse",
			transportFlag: transportStreamableHTTP,
			want:          transportStreamableHTTP,
		},
		{
			name:          "auto detects sse suffix",
			serverURL:     "https://example.com/servers/github/sse",
			transportFlag: transportAuto,
			want:          transportSSE,
		},
		{
			name:          "auto picks streamable for mcp suffix",
			serverURL:     "https://mcp.appforge.io/s/abc123/mcp",
			transportFlag: transportAuto,
			want:          transportStreamableHTTP,
		},
		{
			name:          "auto defaults to streamable",
			serverURL:     "https://example.com/anything",
			transportFlag: transportAuto,
			want:          transportStreamableHTTP,
		},
		{
			name:          "sse in the middle of the path does not count",
			serverURL:     "https://example.com/sse/tools",
			transportFlag: transportAuto,
			want:          transportStreamableHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, determineTransportType(tt.serverURL, tt.transportFlag))
		})
	}
}
