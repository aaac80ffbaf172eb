package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/client"
)

func TestExecutionLogsList(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/execution-logs", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "GMAIL", query.Get("app_name"))
		assert.Equal(t, "failed", query.Get("status"))
		assert.Equal(t, "2024-01-15T00:00:00Z", query.Get("start_time"))
		assert.Equal(t, "2024-01-16T00:00:00Z", query.Get("end_time"))

		writeJSON(w, `{
			"total": 1,
			"items": [
				{
					"id": "log_1",
					"function_name": "GMAIL__SEND_EMAIL",
					"app_name": "GMAIL",
					"status": "failed",
					"execution_time": "2024-01-15T10:00:00Z",
					"duration_ms": 840
				}
			]
		}`)
	})

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	page, err := c.Logs.List(context.Background(), client.ListExecutionLogsParams{
		AppName:   "GMAIL",
		Status:    "failed",
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(840), page.Items[0].DurationMS)
}

func TestExecutionLogsList_TimesSentAsUTC(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/execution-logs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-15T10:00:00Z", r.URL.Query().Get("start_time"))
		writeJSON(w, `{"total": 0, "items": []}`)
	})

	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 1, 15, 12, 0, 0, 0, plusTwo)
	_, err := c.Logs.List(context.Background(), client.ListExecutionLogsParams{StartTime: &start})
	require.NoError(t, err)
}

func TestExecutionLogsGet(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/execution-logs/log_1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{
			"id": "log_1",
			"function_name": "GMAIL__SEND_EMAIL",
			"app_name": "GMAIL",
			"status": "success",
			"execution_time": "2024-01-15T10:00:00Z",
			"duration_ms": 120,
			"function_input": {"recipient": "a@example.com"},
			"function_output": {"id": "msg_9"}
		}`)
	})

	detail, err := c.Logs.Get(context.Background(), "log_1")
	require.NoError(t, err)
	assert.Equal(t, "success", detail.Status)
	assert.JSONEq(t, `{"recipient": "a@example.com"}`, string(detail.FunctionInput))
	assert.JSONEq(t, `{"id": "msg_9"}`, string(detail.FunctionOutput))
}
