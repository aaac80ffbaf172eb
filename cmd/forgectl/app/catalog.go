package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/cmd/forgectl/app/ui"
	"github.com/appforge-io/forgectl/pkg/catalog"
	"github.com/appforge-io/forgectl/pkg/config"
	"github.com/appforge-io/forgectl/pkg/logger"
)

var (
	catalogSearchFormat    string
	catalogSearchApps      []string
	catalogSearchFunctions bool
	catalogSearchLimit     int
)

func newCatalogCommand() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the local catalog cache",
		Long: `The catalog commands maintain a local cache of the platform's app and
function catalog, so browsing and searching keep working offline.`,
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local catalog cache from the platform",
		Args:  cobra.NoArgs,
		RunE:  catalogSyncCmdFunc,
	}

	searchCmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the local catalog cache",
		Long:  "Search the cached catalog by substring over names, descriptions, and tags. No term matches everything.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  catalogSearchCmdFunc,
	}
	addFormatFlag(searchCmd, &catalogSearchFormat)
	searchCmd.Flags().StringArrayVar(&catalogSearchApps, "app", nil, "Restrict to the named app (repeatable)")
	searchCmd.Flags().BoolVar(&catalogSearchFunctions, "functions", false, "Search functions instead of apps")
	searchCmd.Flags().IntVar(&catalogSearchLimit, "limit", 0, "Maximum number of results (0 means no limit)")

	catalogCmd.AddCommand(syncCmd, searchCmd)
	return catalogCmd
}

func catalogSyncCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := newAPIClient(ctx)
	if err != nil {
		return err
	}

	store, err := openCatalogStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := catalog.NewSyncer(catalog.ClientSource{Client: c}, store).Sync(ctx)
	if err != nil {
		return fmt.Errorf("catalog sync failed: %w", err)
	}

	fmt.Printf("Synced %d apps and %d functions.\n", result.Apps, result.Functions)
	return nil
}

func catalogSearchCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var term string
	if len(args) > 0 {
		term = args[0]
	}

	store, err := openCatalogStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	lastSynced, err := store.LastSyncedAt(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog state: %w", err)
	}
	if lastSynced.IsZero() {
		logger.Warnf("The catalog cache has never been synced, run 'forgectl catalog sync' first")
	}

	params := catalog.SearchParams{
		Term:     term,
		AppNames: catalogSearchApps,
		Limit:    catalogSearchLimit,
	}

	if catalogSearchFunctions {
		functions, err := store.SearchFunctions(ctx, params)
		if err != nil {
			return fmt.Errorf("catalog search failed: %w", err)
		}
		if outputFormat(catalogSearchFormat) == FormatJSON {
			return printJSON(functions)
		}
		return ui.RenderFunctionsTable(functions, len(functions))
	}

	apps, err := store.SearchApps(ctx, params)
	if err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}
	if outputFormat(catalogSearchFormat) == FormatJSON {
		return printJSON(apps)
	}
	return ui.RenderAppsTable(apps, len(apps))
}

// openCatalogStore opens the catalog cache, honoring the configured path
// override.
func openCatalogStore(ctx context.Context) (*catalog.SQLiteStore, error) {
	cfg := config.NewDefaultProvider().GetConfig()
	if cfg.Catalog.DBPath != "" {
		return catalog.OpenPath(ctx, cfg.Catalog.DBPath)
	}
	return catalog.Open(ctx)
}
