package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// ExecutionLog is a function execution record as returned by list calls.
// Payloads are only available on the detail view.
type ExecutionLog struct {
	ID                   string    `json:"id"`
	FunctionName         string    `json:"function_name"`
	AppName              string    `json:"app_name"`
	LinkedAccountOwnerID string    `json:"linked_account_owner_id,omitempty"`
	Status               string    `json:"status"`
	ExecutionTime        time.Time `json:"execution_time"`
	DurationMS           int64     `json:"duration_ms"`
}

// ExecutionLogDetail adds the input and output payloads, truncated
// server-side for oversized values.
type ExecutionLogDetail struct {
	ExecutionLog
	FunctionInput  json.RawMessage `json:"function_input,omitempty"`
	FunctionOutput json.RawMessage `json:"function_output,omitempty"`
}

// ExecutionLogsService reads function execution logs.
type ExecutionLogsService struct {
	service
}

// ListExecutionLogsParams filters the execution log list.
type ListExecutionLogsParams struct {
	ListParams
	AppName      string
	FunctionName string
	Status       string
	StartTime    *time.Time
	EndTime      *time.Time
}

// List returns execution log rows matching the filter, newest first.
func (s *ExecutionLogsService) List(ctx context.Context, params ListExecutionLogsParams) (*Paged[ExecutionLog], error) {
	query := params.values()
	if params.AppName != "" {
		query.Set("app_name", params.AppName)
	}
	if params.FunctionName != "" {
		query.Set("function_name", params.FunctionName)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.StartTime != nil {
		query.Set("start_time", params.StartTime.UTC().Format(time.RFC3339))
	}
	if params.EndTime != nil {
		query.Set("end_time", params.EndTime.UTC().Format(time.RFC3339))
	}
	return get[Paged[ExecutionLog]](ctx, s.client, "/execution-logs", query)
}

// Get returns the execution log with payloads.
func (s *ExecutionLogsService) Get(ctx context.Context, id string) (*ExecutionLogDetail, error) {
	if id == "" {
		return nil, errEmptyArgument("execution log id")
	}
	return get[ExecutionLogDetail](ctx, s.client, fmt.Sprintf("/execution-logs/%s", url.PathEscape(id)), nil)
}
