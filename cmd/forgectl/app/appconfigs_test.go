package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appforge-io/forgectl/pkg/client"
)

func TestDescribeEnabledFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		appConfig client.AppConfig
		want      string
	}{
		{
			name:      "all functions enabled",
			appConfig: client.AppConfig{AllFunctionsEnabled: true},
			want:      "all",
		},
		{
			name:      "no functions enabled",
			appConfig: client.AppConfig{},
			want:      "none",
		},
		{
			name: "short list spelled out",
			appConfig: client.AppConfig{
				EnabledFunctions: []string{"GMAIL__SEND_EMAIL", "GMAIL__CREATE_DRAFT"},
			},
			want: "GMAIL__SEND_EMAIL, GMAIL__CREATE_DRAFT",
		},
		{
			name: "long list counted",
			appConfig: client.AppConfig{
				EnabledFunctions: []string{"A", "B", "C", "D"},
			},
			want: "4 enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, describeEnabledFunctions(tt.appConfig))
		})
	}
}
