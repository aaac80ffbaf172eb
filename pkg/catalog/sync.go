package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/appforge-io/forgectl/pkg/client"
	forgeerrors "github.com/appforge-io/forgectl/pkg/errors"
	"github.com/appforge-io/forgectl/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=sync.go Source

const (
	// defaultSyncPageSize is how many records each catalog page requests.
	defaultSyncPageSize = 100
	// syncPageAttempts bounds how often a single page fetch is tried.
	syncPageAttempts = 4

	syncRetryInitialDelay = 500 * time.Millisecond
	syncRetryMaxDelay     = 5 * time.Second
)

// Source lists catalog records from the platform.
type Source interface {
	ListApps(ctx context.Context, params client.ListAppsParams) (*client.Paged[client.App], error)
	ListFunctions(ctx context.Context, params client.ListFunctionsParams) (*client.Paged[client.Function], error)
}

// ClientSource adapts the API client's services to the Source interface.
type ClientSource struct {
	Client *client.Client
}

// ListApps lists one page of the platform app catalog.
func (s ClientSource) ListApps(ctx context.Context, params client.ListAppsParams) (*client.Paged[client.App], error) {
	return s.Client.Apps.List(ctx, params)
}

// ListFunctions lists one page of the platform function catalog.
func (s ClientSource) ListFunctions(ctx context.Context, params client.ListFunctionsParams) (*client.Paged[client.Function], error) {
	return s.Client.Functions.List(ctx, params)
}

// SyncResult summarizes a completed catalog sync.
type SyncResult struct {
	Apps      int
	Functions int
	SyncedAt  time.Time
}

// Syncer refreshes the local catalog cache from the platform.
type Syncer struct {
	source Source
	store  Store

	pageSize   int
	retryDelay time.Duration
	retryCap   time.Duration
}

// NewSyncer creates a Syncer reading from source and writing to store.
func NewSyncer(source Source, store Store) *Syncer {
	return &Syncer{
		source:     source,
		store:      store,
		pageSize:   defaultSyncPageSize,
		retryDelay: syncRetryInitialDelay,
		retryCap:   syncRetryMaxDelay,
	}
}

// Sync fetches every app and function from the platform and replaces the
// cache contents in one transaction. Apps and functions are fetched in
// parallel, and each page is retried on transient errors.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	var (
		apps      []client.App
		functions []client.Function
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		apps, err = s.fetchApps(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		functions, err = s.fetchFunctions(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := s.store.ReplaceAll(ctx, apps, functions); err != nil {
		return nil, fmt.Errorf("replacing catalog contents: %w", err)
	}

	syncedAt, err := s.store.LastSyncedAt(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Catalog sync complete: %d apps, %d functions", len(apps), len(functions))
	return &SyncResult{Apps: len(apps), Functions: len(functions), SyncedAt: syncedAt}, nil
}

// fetchApps pages through the app catalog until exhausted.
func (s *Syncer) fetchApps(ctx context.Context) ([]client.App, error) {
	var apps []client.App
	for offset := 0; ; {
		page, err := fetchPage(ctx, s, func() (*client.Paged[client.App], error) {
			return s.source.ListApps(ctx, client.ListAppsParams{
				ListParams: client.ListParams{Offset: offset, Limit: s.pageSize},
			})
		})
		if err != nil {
			return nil, fmt.Errorf("listing apps at offset %d: %w", offset, err)
		}
		apps = append(apps, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			return apps, nil
		}
	}
}

// fetchFunctions pages through the function catalog until exhausted.
func (s *Syncer) fetchFunctions(ctx context.Context) ([]client.Function, error) {
	var functions []client.Function
	for offset := 0; ; {
		page, err := fetchPage(ctx, s, func() (*client.Paged[client.Function], error) {
			return s.source.ListFunctions(ctx, client.ListFunctionsParams{
				ListParams: client.ListParams{Offset: offset, Limit: s.pageSize},
			})
		})
		if err != nil {
			return nil, fmt.Errorf("listing functions at offset %d: %w", offset, err)
		}
		functions = append(functions, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			return functions, nil
		}
	}
}

// fetchPage retries a single page fetch with exponential backoff. Outages
// and rate limits are worth retrying; anything else fails the sync
// immediately.
func fetchPage[T any](ctx context.Context, s *Syncer, list func() (*client.Paged[T], error)) (*client.Paged[T], error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.retryDelay
	expBackoff.MaxInterval = s.retryCap

	operation := func() (*client.Paged[T], error) {
		page, err := list()
		if err != nil {
			if !forgeerrors.IsUnavailable(err) && !forgeerrors.IsQuotaExceeded(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return page, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(syncPageAttempts),
		backoff.WithNotify(func(err error, delay time.Duration) {
			logger.Debugf("Retrying catalog page fetch after %v: %v", delay, err)
		}),
	)
}
