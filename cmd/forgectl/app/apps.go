package app

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/cmd/forgectl/app/ui"
	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	appsListFormat   string
	appsListNames    []string
	appsListActive   bool
	appsListOffset   int
	appsListLimit    int
	appsGetFormat    string
	appsSearchFormat string
	appsSearchCats   []string
	appsSearchOffset int
	appsSearchLimit  int
)

func newAppsCommand() *cobra.Command {
	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "Browse the app catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List apps",
		Args:  cobra.NoArgs,
		RunE:  appsListCmdFunc,
	}
	addFormatFlag(listCmd, &appsListFormat)
	addPagingFlags(listCmd, &appsListOffset, &appsListLimit)
	listCmd.Flags().StringArrayVar(&appsListNames, "app", nil, "Restrict to the named app (repeatable)")
	listCmd.Flags().BoolVar(&appsListActive, "active", false, "Only show active apps")

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show an app and its functions",
		Args:  cobra.ExactArgs(1),
		RunE:  appsGetCmdFunc,
	}
	addFormatFlag(getCmd, &appsGetFormat)

	searchCmd := &cobra.Command{
		Use:   "search <intent>",
		Short: "Search apps by intent",
		Long:  "Search the app catalog with a natural language intent, such as \"send a message to a channel\".",
		Args:  cobra.ExactArgs(1),
		RunE:  appsSearchCmdFunc,
	}
	addFormatFlag(searchCmd, &appsSearchFormat)
	addPagingFlags(searchCmd, &appsSearchOffset, &appsSearchLimit)
	searchCmd.Flags().StringArrayVar(&appsSearchCats, "category", nil, "Restrict to a category (repeatable)")

	appsCmd.AddCommand(listCmd, getCmd, searchCmd)
	return appsCmd
}

func appsListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.Apps.List(cmd.Context(), client.ListAppsParams{
		ListParams: client.ListParams{Offset: appsListOffset, Limit: appsListLimit},
		AppNames:   appsListNames,
		ActiveOnly: appsListActive,
	})
	if err != nil {
		return fmt.Errorf("failed to list apps: %w", err)
	}

	if outputFormat(appsListFormat) == FormatJSON {
		return printJSON(page)
	}
	return ui.RenderAppsTable(page.Items, page.Total)
}

func appsGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	details, err := c.Apps.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get app: %w", err)
	}

	if outputFormat(appsGetFormat) == FormatJSON {
		return printJSON(details)
	}
	return printAppDetails(details)
}

func appsSearchCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.Apps.Search(cmd.Context(), client.SearchAppsParams{
		ListParams: client.ListParams{Offset: appsSearchOffset, Limit: appsSearchLimit},
		Intent:     args[0],
		Categories: appsSearchCats,
	})
	if err != nil {
		return fmt.Errorf("failed to search apps: %w", err)
	}

	if outputFormat(appsSearchFormat) == FormatJSON {
		return printJSON(page)
	}
	return ui.RenderAppsTable(page.Items, page.Total)
}

func printAppDetails(details *client.AppDetails) error {
	fmt.Printf("Name: %s\n", details.Name)
	fmt.Printf("Display name: %s\n", details.DisplayName)
	fmt.Printf("Provider: %s\n", details.Provider)
	fmt.Printf("Version: %s\n", details.Version)
	fmt.Printf("Description: %s\n", details.Description)
	fmt.Printf("Categories: %s\n", strings.Join(details.Categories, ", "))
	fmt.Printf("Security schemes: %s\n", strings.Join(details.SecuritySchemes, ", "))
	fmt.Printf("Active: %t\n", details.Active)
	fmt.Printf("Functions: %d\n", len(details.Functions))

	if len(details.Functions) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, function := range details.Functions {
		fmt.Fprintf(w, "%s\t%s\n", function.Name, truncateString(function.Description, 60))
	}
	return w.Flush()
}
