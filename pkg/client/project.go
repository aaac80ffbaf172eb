package client

import (
	"context"
	"time"
)

// Project is the caller's project with its quota counters.
type Project struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Plan                string    `json:"plan"`
	DailyQuotaUsed      int64     `json:"daily_quota_used"`
	DailyQuotaResetAt   time.Time `json:"daily_quota_reset_at"`
	APIQuotaMonthlyUsed int64     `json:"api_quota_monthly_used"`
	APIQuotaLastReset   time.Time `json:"api_quota_last_reset"`
	TotalQuotaUsed      int64     `json:"total_quota_used"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProjectService reads the caller's project.
type ProjectService struct {
	service
}

// Get returns the project identified by the API key, including quota usage.
func (s *ProjectService) Get(ctx context.Context) (*Project, error) {
	return get[Project](ctx, s.client, "/project", nil)
}
