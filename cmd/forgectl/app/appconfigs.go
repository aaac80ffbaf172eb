package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	appConfigsListFormat string
	appConfigsListOffset int
	appConfigsListLimit  int
	appConfigsGetFormat  string
)

func newAppConfigsCommand() *cobra.Command {
	appConfigsCmd := &cobra.Command{
		Use:   "appconfigs",
		Short: "Manage app configurations for the project",
		Long:  "An app configuration enables an app for the project and selects its security scheme and functions.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List app configurations",
		Args:  cobra.NoArgs,
		RunE:  appConfigsListCmdFunc,
	}
	addFormatFlag(listCmd, &appConfigsListFormat)
	addPagingFlags(listCmd, &appConfigsListOffset, &appConfigsListLimit)

	getCmd := &cobra.Command{
		Use:   "get <app>",
		Short: "Show an app configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  appConfigsGetCmdFunc,
	}
	addFormatFlag(getCmd, &appConfigsGetFormat)

	createCmd := &cobra.Command{
		Use:   "create <app>",
		Short: "Enable an app for the project",
		Args:  cobra.ExactArgs(1),
		RunE:  appConfigsCreateCmdFunc,
	}
	createCmd.Flags().String("security-scheme", "", "Security scheme the app authenticates with (e.g. oauth2, api_key)")
	createCmd.Flags().String("scheme-overrides", "", "Security scheme overrides as a JSON object")
	createCmd.Flags().Bool("all-functions", false, "Enable all of the app's functions")
	createCmd.Flags().StringArray("function", nil, "Enable the named function (repeatable)")
	if err := createCmd.MarkFlagRequired("security-scheme"); err != nil {
		panic(err)
	}

	updateCmd := &cobra.Command{
		Use:   "update <app>",
		Short: "Update an app configuration",
		Long:  "Update an app configuration. Only the given flags change; everything else is left as is.",
		Args:  cobra.ExactArgs(1),
		RunE:  appConfigsUpdateCmdFunc,
	}
	updateCmd.Flags().String("security-scheme", "", "Security scheme the app authenticates with")
	updateCmd.Flags().String("scheme-overrides", "", "Security scheme overrides as a JSON object")
	updateCmd.Flags().Bool("enabled", true, "Enable or disable the app configuration")
	updateCmd.Flags().Bool("all-functions", false, "Enable all of the app's functions")
	updateCmd.Flags().StringArray("function", nil, "Enable the named function (repeatable)")

	deleteCmd := &cobra.Command{
		Use:   "delete <app>",
		Short: "Delete an app configuration",
		Long:  "Delete an app configuration along with all linked accounts under it.",
		Args:  cobra.ExactArgs(1),
		RunE:  appConfigsDeleteCmdFunc,
	}
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	appConfigsCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return appConfigsCmd
}

func appConfigsListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.AppConfigs.List(cmd.Context(), client.ListParams{
		Offset: appConfigsListOffset,
		Limit:  appConfigsListLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list app configurations: %w", err)
	}

	if outputFormat(appConfigsListFormat) == FormatJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No app configurations found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "APP\tSECURITY SCHEME\tENABLED\tFUNCTIONS")
	for _, appConfig := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
			appConfig.AppName,
			appConfig.SecurityScheme,
			appConfig.Enabled,
			describeEnabledFunctions(appConfig),
		)
	}
	return w.Flush()
}

func appConfigsGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	appConfig, err := c.AppConfigs.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get app configuration: %w", err)
	}

	if outputFormat(appConfigsGetFormat) == FormatJSON {
		return printJSON(appConfig)
	}

	fmt.Printf("App: %s\n", appConfig.AppName)
	fmt.Printf("Security scheme: %s\n", appConfig.SecurityScheme)
	fmt.Printf("Enabled: %t\n", appConfig.Enabled)
	fmt.Printf("Functions: %s\n", describeEnabledFunctions(*appConfig))
	fmt.Printf("Created: %s\n", appConfig.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", appConfig.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func appConfigsCreateCmdFunc(cmd *cobra.Command, args []string) error {
	securityScheme, _ := cmd.Flags().GetString("security-scheme")
	allFunctions, _ := cmd.Flags().GetBool("all-functions")
	functions, _ := cmd.Flags().GetStringArray("function")

	overrides, err := parseSchemeOverrides(cmd)
	if err != nil {
		return err
	}

	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	appConfig, err := c.AppConfigs.Create(cmd.Context(), client.CreateAppConfigRequest{
		AppName:                 args[0],
		SecurityScheme:          securityScheme,
		SecuritySchemeOverrides: overrides,
		AllFunctionsEnabled:     allFunctions,
		EnabledFunctions:        functions,
	})
	if err != nil {
		return fmt.Errorf("failed to create app configuration: %w", err)
	}

	fmt.Printf("App configuration created for %s.\n", appConfig.AppName)
	return nil
}

func appConfigsUpdateCmdFunc(cmd *cobra.Command, args []string) error {
	req := client.UpdateAppConfigRequest{}

	if cmd.Flags().Changed("security-scheme") {
		securityScheme, _ := cmd.Flags().GetString("security-scheme")
		req.SecurityScheme = &securityScheme
	}
	if cmd.Flags().Changed("scheme-overrides") {
		overrides, err := parseSchemeOverrides(cmd)
		if err != nil {
			return err
		}
		req.SecuritySchemeOverrides = overrides
	}
	if cmd.Flags().Changed("enabled") {
		enabled, _ := cmd.Flags().GetBool("enabled")
		req.Enabled = &enabled
	}
	if cmd.Flags().Changed("all-functions") {
		allFunctions, _ := cmd.Flags().GetBool("all-functions")
		req.AllFunctionsEnabled = &allFunctions
	}
	if cmd.Flags().Changed("function") {
		functions, _ := cmd.Flags().GetStringArray("function")
		req.EnabledFunctions = functions
	}

	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	appConfig, err := c.AppConfigs.Update(cmd.Context(), args[0], req)
	if err != nil {
		return fmt.Errorf("failed to update app configuration: %w", err)
	}

	fmt.Printf("App configuration for %s updated.\n", appConfig.AppName)
	return nil
}

func appConfigsDeleteCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Delete the app configuration for %s and all of its linked accounts?", args[0]))
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Cancelled.")
		return nil
	}

	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	if err := c.AppConfigs.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete app configuration: %w", err)
	}

	fmt.Printf("App configuration for %s deleted.\n", args[0])
	return nil
}

func parseSchemeOverrides(cmd *cobra.Command) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString("scheme-overrides")
	if raw == "" {
		return nil, nil
	}

	var overrides map[string]any
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("invalid --scheme-overrides JSON: %w", err)
	}
	return overrides, nil
}

func describeEnabledFunctions(appConfig client.AppConfig) string {
	if appConfig.AllFunctionsEnabled {
		return "all"
	}
	if len(appConfig.EnabledFunctions) == 0 {
		return "none"
	}
	if len(appConfig.EnabledFunctions) <= 3 {
		return strings.Join(appConfig.EnabledFunctions, ", ")
	}
	return fmt.Sprintf("%d enabled", len(appConfig.EnabledFunctions))
}
