package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/client"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := OpenPath(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleApps() []client.App {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	return []client.App{
		{
			Name:            "GMAIL",
			DisplayName:     "Gmail",
			Provider:        "google",
			Version:         "1.2.0",
			Description:     "Send and search email",
			Categories:      []string{"email", "productivity"},
			Visibility:      "public",
			Active:          true,
			SecuritySchemes: []string{"oauth2"},
			CreatedAt:       created,
			UpdatedAt:       created,
		},
		{
			Name:            "SLACK",
			DisplayName:     "Slack",
			Provider:        "salesforce",
			Version:         "2.0.1",
			Description:     "Post messages and manage channels",
			Categories:      []string{"chat"},
			Visibility:      "public",
			Active:          false,
			SecuritySchemes: []string{"oauth2", "api_key"},
			CreatedAt:       created,
			UpdatedAt:       created.Add(time.Hour),
		},
	}
}

func sampleFunctions() []client.Function {
	created := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	return []client.Function{
		{
			Name:        "GMAIL__SEND_EMAIL",
			Description: "Send an email from the linked account",
			Tags:        []string{"email", "write"},
			Visibility:  "public",
			Active:      true,
			Protocol:    "rest",
			ProtocolData: client.ProtocolData{
				Method:    "POST",
				Path:      "/messages/send",
				ServerURL: "https://gmail.googleapis.com",
			},
			Parameters: map[string]any{
				"type":                 "object",
				"additionalProperties": false,
			},
			Response:  map[string]any{"type": "object"},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			Name:        "SLACK__POST_MESSAGE",
			Description: "Post a message to a channel",
			Tags:        []string{"chat", "write"},
			Visibility:  "public",
			Active:      true,
			Protocol:    "rest",
			ProtocolData: client.ProtocolData{
				Method:    "POST",
				Path:      "/chat.postMessage",
				ServerURL: "https://slack.com/api",
			},
			Parameters: map[string]any{"type": "object"},
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}
}

func TestSQLiteStore_UpsertAndSearchApps(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.UpsertApps(ctx, sampleApps()))

	apps, err := store.SearchApps(ctx, SearchParams{})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, sampleApps(), apps)
}

func TestSQLiteStore_UpsertApps_UpdatesExisting(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()

	apps := sampleApps()
	require.NoError(t, store.UpsertApps(ctx, apps))

	apps[0].Description = "Send, search and label email"
	apps[0].Version = "1.3.0"
	require.NoError(t, store.UpsertApps(ctx, apps[:1]))

	got, err := store.SearchApps(ctx, SearchParams{AppNames: []string{"GMAIL"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Send, search and label email", got[0].Description)
	assert.Equal(t, "1.3.0", got[0].Version)
}

func TestSQLiteStore_SearchApps(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()
	require.NoError(t, store.UpsertApps(ctx, sampleApps()))

	tests := []struct {
		name      string
		params    SearchParams
		wantNames []string
	}{
		{
			name:      "matches name substring",
			params:    SearchParams{Term: "MAI"},
			wantNames: []string{"GMAIL"},
		},
		{
			name:      "matches display name",
			params:    SearchParams{Term: "slack"},
			wantNames: []string{"SLACK"},
		},
		{
			name:      "matches description case insensitively",
			params:    SearchParams{Term: "SEARCH EMAIL"},
			wantNames: []string{"GMAIL"},
		},
		{
			name:      "matches category",
			params:    SearchParams{Term: "productivity"},
			wantNames: []string{"GMAIL"},
		},
		{
			name:      "no match",
			params:    SearchParams{Term: "calendar"},
			wantNames: nil,
		},
		{
			name:      "app name filter",
			params:    SearchParams{AppNames: []string{"SLACK"}},
			wantNames: []string{"SLACK"},
		},
		{
			name:      "term and filter combine",
			params:    SearchParams{Term: "email", AppNames: []string{"SLACK"}},
			wantNames: nil,
		},
		{
			name:      "limit caps results",
			params:    SearchParams{Limit: 1},
			wantNames: []string{"GMAIL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			apps, err := store.SearchApps(ctx, tt.params)
			require.NoError(t, err)
			var names []string
			for _, app := range apps {
				names = append(names, app.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestSQLiteStore_SearchApps_EscapesLikeWildcards(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()

	apps := sampleApps()
	apps[0].Description = "Delivers 100% of email"
	require.NoError(t, store.UpsertApps(ctx, apps))

	got, err := store.SearchApps(ctx, SearchParams{Term: "100%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GMAIL", got[0].Name)

	// A literal % must not act as a wildcard.
	got, err = store.SearchApps(ctx, SearchParams{Term: "50%"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_UpsertAndSearchFunctions(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.UpsertFunctions(ctx, sampleFunctions()))

	functions, err := store.SearchFunctions(ctx, SearchParams{})
	require.NoError(t, err)
	require.Len(t, functions, 2)
	assert.Equal(t, sampleFunctions(), functions)

	// A response stored as NULL comes back nil, not an empty map.
	assert.Nil(t, functions[1].Response)
}

func TestSQLiteStore_SearchFunctions(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()
	require.NoError(t, store.UpsertFunctions(ctx, sampleFunctions()))

	tests := []struct {
		name      string
		params    SearchParams
		wantNames []string
	}{
		{
			name:      "matches function name",
			params:    SearchParams{Term: "send_email"},
			wantNames: []string{"GMAIL__SEND_EMAIL"},
		},
		{
			name:      "matches description",
			params:    SearchParams{Term: "channel"},
			wantNames: []string{"SLACK__POST_MESSAGE"},
		},
		{
			name:      "matches tag",
			params:    SearchParams{Term: "write"},
			wantNames: []string{"GMAIL__SEND_EMAIL", "SLACK__POST_MESSAGE"},
		},
		{
			name:      "app name filter",
			params:    SearchParams{Term: "write", AppNames: []string{"SLACK"}},
			wantNames: []string{"SLACK__POST_MESSAGE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			functions, err := store.SearchFunctions(ctx, tt.params)
			require.NoError(t, err)
			var names []string
			for _, function := range functions {
				names = append(names, function.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestSQLiteStore_ReplaceAll(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.UpsertApps(ctx, sampleApps()))
	require.NoError(t, store.UpsertFunctions(ctx, sampleFunctions()))

	replacement := sampleApps()[:1]
	require.NoError(t, store.ReplaceAll(ctx, replacement, nil))

	apps, err := store.SearchApps(ctx, SearchParams{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "GMAIL", apps[0].Name)

	functions, err := store.SearchFunctions(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, functions)

	syncedAt, err := store.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), syncedAt, time.Minute)
}

func TestSQLiteStore_LastSyncedAt_NeverSynced(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	syncedAt, err := store.LastSyncedAt(t.Context())
	require.NoError(t, err)
	assert.True(t, syncedAt.IsZero())
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := t.Context()

	store, err := OpenPath(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.UpsertApps(ctx, sampleApps()))
	require.NoError(t, store.Close())

	// Reopening applies migrations again, which must be a no-op.
	reopened, err := OpenPath(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	apps, err := reopened.SearchApps(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestLikePattern(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "%email%", likePattern("email"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\temp%`, likePattern(`c:\temp`))
}
