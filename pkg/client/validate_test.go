package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/client"
)

func TestValidateFunctionUpserts(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{
			"name": "GMAIL__SEND_EMAIL",
			"description": "Send an email",
			"protocol": "rest",
			"protocol_data": {"method": "POST", "path": "/messages/send", "server_url": "https://gmail.googleapis.com"},
			"parameters": {"type": "object", "properties": {}}
		}
	]`)

	definitions, err := client.ValidateFunctionUpserts(data)
	require.NoError(t, err)
	require.Len(t, definitions, 1)

	definition := definitions[0]
	assert.Equal(t, "GMAIL__SEND_EMAIL", definition.Name)
	assert.Equal(t, "POST", definition.ProtocolData.Method)

	// Omitted optional fields get the platform defaults.
	assert.Equal(t, "public", definition.Visibility)
	assert.True(t, definition.Active)
	assert.NotNil(t, definition.Tags)
	assert.Empty(t, definition.Tags)
}

func TestValidateFunctionUpserts_ExplicitValuesKept(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{
			"name": "GMAIL__SEND_EMAIL",
			"description": "Send an email",
			"visibility": "private",
			"active": false,
			"tags": ["email"],
			"protocol": "rest",
			"protocol_data": {"method": "POST", "path": "/messages/send"}
		}
	]`)

	definitions, err := client.ValidateFunctionUpserts(data)
	require.NoError(t, err)
	require.Len(t, definitions, 1)

	assert.Equal(t, "private", definitions[0].Visibility)
	assert.False(t, definitions[0].Active, "an explicit active false must not be replaced by the default")
	assert.Equal(t, []string{"email"}, definitions[0].Tags)
}

func TestValidateFunctionUpserts_Invalid(t *testing.T) {
	t.Parallel()

	valid := `{
		"name": "GMAIL__SEND_EMAIL",
		"description": "Send an email",
		"protocol": "rest",
		"protocol_data": {"method": "POST", "path": "/messages/send"}
	}`

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "not JSON",
			data:    `{not json`,
			wantErr: "failed to parse function definitions",
		},
		{
			name:    "object instead of array",
			data:    valid,
			wantErr: "invalid function definitions",
		},
		{
			name:    "empty array",
			data:    `[]`,
			wantErr: "invalid function definitions",
		},
		{
			name: "missing description",
			data: `[{
				"name": "GMAIL__SEND_EMAIL",
				"protocol": "rest",
				"protocol_data": {"method": "POST", "path": "/x"}
			}]`,
			wantErr: "description",
		},
		{
			name: "lowercase name",
			data: `[{
				"name": "gmail__send_email",
				"description": "Send an email",
				"protocol": "rest",
				"protocol_data": {"method": "POST", "path": "/x"}
			}]`,
			wantErr: "name",
		},
		{
			name: "unknown protocol",
			data: `[{
				"name": "GMAIL__SEND_EMAIL",
				"description": "Send an email",
				"protocol": "graphql",
				"protocol_data": {"method": "POST", "path": "/x"}
			}]`,
			wantErr: "protocol",
		},
		{
			name: "unknown field",
			data: `[{
				"name": "GMAIL__SEND_EMAIL",
				"description": "Send an email",
				"protocol": "rest",
				"protocol_data": {"method": "POST", "path": "/x"},
				"descripton_typo": "oops"
			}]`,
			wantErr: "descripton_typo",
		},
		{
			name: "invalid method",
			data: `[{
				"name": "GMAIL__SEND_EMAIL",
				"description": "Send an email",
				"protocol": "rest",
				"protocol_data": {"method": "SEND", "path": "/x"}
			}]`,
			wantErr: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			definitions, err := client.ValidateFunctionUpserts([]byte(tt.data))
			assert.Nil(t, definitions)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFunctionUpserts_ReportsAllErrors(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{"name": "GMAIL__A", "protocol": "rest", "protocol_data": {"method": "GET", "path": "/a"}},
		{"name": "GMAIL__B", "protocol": "rest", "protocol_data": {"method": "GET", "path": "/b"}}
	]`)

	_, err := client.ValidateFunctionUpserts(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors", "both missing descriptions should be reported at once")
}
