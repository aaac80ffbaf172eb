package catalog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/appforge-io/forgectl/pkg/catalog"
	"github.com/appforge-io/forgectl/pkg/catalog/mocks"
	"github.com/appforge-io/forgectl/pkg/client"
	forgeerrors "github.com/appforge-io/forgectl/pkg/errors"
)

func appsPage(total int, names ...string) *client.Paged[client.App] {
	page := &client.Paged[client.App]{Total: total}
	for _, name := range names {
		page.Items = append(page.Items, client.App{Name: name})
	}
	return page
}

func functionsPage(total int, names ...string) *client.Paged[client.Function] {
	page := &client.Paged[client.Function]{Total: total}
	for _, name := range names {
		page.Items = append(page.Items, client.Function{Name: name})
	}
	return page
}

func listParams(offset, limit int) client.ListParams {
	return client.ListParams{Offset: offset, Limit: limit}
}

func TestSyncer_Sync_PagesUntilExhausted(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	store := mocks.NewMockStore(ctrl)

	source.EXPECT().
		ListApps(gomock.Any(), client.ListAppsParams{ListParams: listParams(0, 2)}).
		Return(appsPage(3, "GMAIL", "SLACK"), nil)
	source.EXPECT().
		ListApps(gomock.Any(), client.ListAppsParams{ListParams: listParams(2, 2)}).
		Return(appsPage(3, "STRIPE"), nil)
	source.EXPECT().
		ListFunctions(gomock.Any(), client.ListFunctionsParams{ListParams: listParams(0, 2)}).
		Return(functionsPage(1, "GMAIL__SEND_EMAIL"), nil)

	syncedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.EXPECT().
		ReplaceAll(gomock.Any(),
			[]client.App{{Name: "GMAIL"}, {Name: "SLACK"}, {Name: "STRIPE"}},
			[]client.Function{{Name: "GMAIL__SEND_EMAIL"}}).
		Return(nil)
	store.EXPECT().LastSyncedAt(gomock.Any()).Return(syncedAt, nil)

	syncer := catalog.NewTestSyncer(source, store, 2)
	result, err := syncer.Sync(t.Context())
	require.NoError(t, err)
	assert.Equal(t, &catalog.SyncResult{Apps: 3, Functions: 1, SyncedAt: syncedAt}, result)
}

func TestSyncer_Sync_RetriesTransientErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	store := mocks.NewMockStore(ctrl)

	gomock.InOrder(
		source.EXPECT().ListApps(gomock.Any(), gomock.Any()).
			Return(nil, forgeerrors.NewUnavailableError("upstream down", nil)),
		source.EXPECT().ListApps(gomock.Any(), gomock.Any()).
			Return(nil, forgeerrors.NewQuotaExceededError("rate limited", nil)),
		source.EXPECT().ListApps(gomock.Any(), gomock.Any()).
			Return(appsPage(1, "GMAIL"), nil),
	)
	source.EXPECT().ListFunctions(gomock.Any(), gomock.Any()).
		Return(functionsPage(0), nil)

	store.EXPECT().
		ReplaceAll(gomock.Any(), []client.App{{Name: "GMAIL"}}, gomock.Nil()).
		Return(nil)
	store.EXPECT().LastSyncedAt(gomock.Any()).Return(time.Time{}, nil)

	syncer := catalog.NewTestSyncer(source, store, 10)
	result, err := syncer.Sync(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Apps)
	assert.Equal(t, 0, result.Functions)
}

func TestSyncer_Sync_PermanentErrorFailsFast(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	store := mocks.NewMockStore(ctrl)

	// A non-transient error must not be retried, and the cache must stay
	// untouched. The parallel function fetch may or may not start before
	// the group is canceled.
	source.EXPECT().ListApps(gomock.Any(), gomock.Any()).
		Return(nil, forgeerrors.NewUnauthorizedError("bad API key", nil)).
		Times(1)
	source.EXPECT().ListFunctions(gomock.Any(), gomock.Any()).
		Return(functionsPage(0), nil).
		AnyTimes()

	syncer := catalog.NewTestSyncer(source, store, 10)
	_, err := syncer.Sync(t.Context())
	require.Error(t, err)
	assert.True(t, forgeerrors.IsUnauthorized(err), "expected unauthorized, got %v", err)
}

func TestSyncer_Sync_ReplaceAllFailureSurfaces(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	store := mocks.NewMockStore(ctrl)

	source.EXPECT().ListApps(gomock.Any(), gomock.Any()).Return(appsPage(0), nil)
	source.EXPECT().ListFunctions(gomock.Any(), gomock.Any()).Return(functionsPage(0), nil)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(forgeerrors.NewUnavailableError("disk full", nil))

	syncer := catalog.NewTestSyncer(source, store, 10)
	_, err := syncer.Sync(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replacing catalog contents")
}

func TestClientSource_ListsThroughClient(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/v1/apps", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "items": [{"name": "GMAIL"}]}`))
	})
	mux.HandleFunc("/v1/functions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "items": [{"name": "GMAIL__SEND_EMAIL"}]}`))
	})

	c, err := client.New(server.URL, "test-key", client.WithAllowInsecure(true))
	require.NoError(t, err)

	source := catalog.ClientSource{Client: c}

	apps, err := source.ListApps(t.Context(), client.ListAppsParams{})
	require.NoError(t, err)
	require.Len(t, apps.Items, 1)
	assert.Equal(t, "GMAIL", apps.Items[0].Name)

	functions, err := source.ListFunctions(t.Context(), client.ListFunctionsParams{})
	require.NoError(t, err)
	require.Len(t, functions.Items, 1)
	assert.Equal(t, "GMAIL__SEND_EMAIL", functions.Items[0].Name)
}
