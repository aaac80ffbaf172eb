package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/cmd/forgectl/app/ui"
	"github.com/appforge-io/forgectl/pkg/client"
	"github.com/appforge-io/forgectl/pkg/openapi"
)

// upsertPageSize is how many existing functions each dry-run page fetches.
const upsertPageSize = 100

var (
	functionsListFormat string
	functionsListApps   []string
	functionsListOffset int
	functionsListLimit  int
	functionsGetFormat  string

	convertFilePath          string
	convertDocumentURL       string
	convertAppName           string
	convertServerURL         string
	convertTruncateDepth     int
	convertInferRequired     string
	convertOutputPath        string
	convertAllowExternalRefs bool
	convertAllowInsecure     bool
	convertAllowPrivate      bool

	upsertSkipDryRun bool

	exportFormat string
	exportOutput string
	exportRemote bool
)

func newFunctionsCommand() *cobra.Command {
	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "Manage function definitions",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List function definitions",
		Args:  cobra.NoArgs,
		RunE:  functionsListCmdFunc,
	}
	addFormatFlag(listCmd, &functionsListFormat)
	addPagingFlags(listCmd, &functionsListOffset, &functionsListLimit)
	listCmd.Flags().StringArrayVar(&functionsListApps, "app", nil, "Restrict to functions of the named app (repeatable)")

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a function definition",
		Args:  cobra.ExactArgs(1),
		RunE:  functionsGetCmdFunc,
	}
	addFormatFlag(getCmd, &functionsGetFormat)

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an OpenAPI document into function definitions",
		Long: `Convert an OpenAPI 3.x document into function definitions ready for upsert.

Each operation becomes one function named <APP>__<OPERATION_ID>. Parameter
schemas are normalized: unsupported keywords are dropped, nullable unions
are collapsed, and nesting is truncated at --truncate-depth.`,
		Args: cobra.NoArgs,
		RunE: functionsConvertCmdFunc,
	}
	convertCmd.Flags().StringVar(&convertFilePath, "file", "", "Path of the OpenAPI document")
	convertCmd.Flags().StringVar(&convertDocumentURL, "url", "", "URL of the OpenAPI document")
	convertCmd.Flags().StringVar(&convertAppName, "app", "", "App the functions belong to")
	convertCmd.Flags().StringVar(&convertServerURL, "server-url", "", "Override the document's server URL")
	convertCmd.Flags().IntVar(&convertTruncateDepth, "truncate-depth", openapi.DefaultTruncateDepth,
		"Maximum schema nesting depth before truncation")
	convertCmd.Flags().StringVar(&convertInferRequired, "infer-required", "non-nullable",
		"How to infer required parameters (none, all, non-nullable)")
	convertCmd.Flags().StringVarP(&convertOutputPath, "output", "o", "", "Write the definitions to a file instead of stdout")
	convertCmd.Flags().BoolVar(&convertAllowExternalRefs, "allow-external-refs", false,
		"Resolve $refs pointing outside the document")
	convertCmd.Flags().BoolVar(&convertAllowInsecure, "allow-insecure", false, "Allow fetching the document over plain http")
	convertCmd.Flags().BoolVar(&convertAllowPrivate, "allow-private", false, "Allow fetching the document from private addresses")
	if err := convertCmd.MarkFlagRequired("app"); err != nil {
		panic(err)
	}

	upsertCmd := &cobra.Command{
		Use:   "upsert <file>",
		Short: "Create or update function definitions from a file",
		Long: `Create or update function definitions from a JSON file.

By default this is a dry run: the file is validated and compared against
the functions stored for the app, and the planned actions are printed.
Pass --skip-dry-run to apply the changes.`,
		Args: cobra.ExactArgs(1),
		RunE: functionsUpsertCmdFunc,
	}
	upsertCmd.Flags().BoolVar(&upsertSkipDryRun, "skip-dry-run", false, "Apply the changes instead of printing the plan")

	exportCmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a function definition in a consumer format",
		Long: `Export a function definition rendered for a consumer.

Formats: raw (full record), basic (catalog display), openai (chat
completions tool), openai_responses (responses API tool), anthropic.`,
		Args: cobra.ExactArgs(1),
		RunE: functionsExportCmdFunc,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", string(client.FormatRaw),
		"Definition format (raw, basic, openai, openai_responses, anthropic)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the definition to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportRemote, "remote", false, "Let the platform render the definition instead of rendering locally")

	functionsCmd.AddCommand(listCmd, getCmd, convertCmd, upsertCmd, exportCmd)
	return functionsCmd
}

func functionsListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.Functions.List(cmd.Context(), client.ListFunctionsParams{
		ListParams: client.ListParams{Offset: functionsListOffset, Limit: functionsListLimit},
		AppNames:   functionsListApps,
	})
	if err != nil {
		return fmt.Errorf("failed to list functions: %w", err)
	}

	if outputFormat(functionsListFormat) == FormatJSON {
		return printJSON(page)
	}
	return ui.RenderFunctionsTable(page.Items, page.Total)
}

func functionsGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	function, err := c.Functions.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get function: %w", err)
	}

	if outputFormat(functionsGetFormat) == FormatJSON {
		return printJSON(function)
	}

	fmt.Printf("Name: %s\n", function.Name)
	fmt.Printf("Description: %s\n", function.Description)
	fmt.Printf("Tags: %s\n", joinOrNone(function.Tags))
	fmt.Printf("Visibility: %s\n", function.Visibility)
	fmt.Printf("Active: %t\n", function.Active)
	fmt.Printf("Protocol: %s %s %s\n", function.Protocol, function.ProtocolData.Method, function.ProtocolData.Path)
	fmt.Println("Parameters:")
	return printJSON(function.Parameters)
}

func functionsConvertCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if (convertFilePath == "") == (convertDocumentURL == "") {
		return fmt.Errorf("exactly one of --file or --url must be given")
	}

	policy, err := openapi.ParseRequiredPolicy(convertInferRequired)
	if err != nil {
		return err
	}

	loadOpts := openapi.LoadOptions{
		AllowExternalRefs: convertAllowExternalRefs,
		AllowInsecure:     convertAllowInsecure,
		AllowPrivate:      convertAllowPrivate,
	}

	var doc *openapi3.T
	if convertFilePath != "" {
		doc, err = openapi.LoadFile(ctx, convertFilePath, loadOpts)
	} else {
		doc, err = openapi.FetchDocument(ctx, convertDocumentURL, loadOpts)
	}
	if err != nil {
		return err
	}

	definitions, err := openapi.Convert(doc, openapi.ConvertOptions{
		AppName:   convertAppName,
		ServerURL: convertServerURL,
		Normalize: openapi.Options{
			InferRequired: policy,
			TruncateDepth: convertTruncateDepth,
		},
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(definitions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definitions: %w", err)
	}

	if convertOutputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := writeOutputFile(convertOutputPath, out); err != nil {
		return err
	}
	fmt.Printf("Wrote %d function definitions to %s.\n", len(definitions), convertOutputPath)
	return nil
}

func functionsUpsertCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	definitions, err := client.ValidateFunctionUpserts(data)
	if err != nil {
		return err
	}

	appName, err := client.UpsertAppName(definitions)
	if err != nil {
		return err
	}

	c, err := newAPIClient(ctx)
	if err != nil {
		return err
	}

	existing, err := fetchAllFunctions(ctx, c, appName)
	if err != nil {
		return err
	}

	plan, err := client.PlanUpserts(definitions, existing)
	if err != nil {
		return err
	}

	if err := ui.RenderUpsertPlanTable(plan); err != nil {
		return err
	}
	create, update, unchanged := plan.Counts()
	fmt.Printf("%d to create, %d to update, %d unchanged.\n", create, update, unchanged)

	if !upsertSkipDryRun {
		fmt.Println("Dry run, pass --skip-dry-run to apply these changes.")
		return nil
	}

	changed := plan.Changed()
	if len(changed) == 0 {
		fmt.Println("Nothing to apply.")
		return nil
	}

	upserted, err := c.Functions.Upsert(ctx, changed)
	if err != nil {
		return fmt.Errorf("failed to upsert functions: %w", err)
	}

	fmt.Printf("Upserted %d functions for %s.\n", len(upserted), appName)
	return nil
}

func functionsExportCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := client.ParseDefinitionFormat(exportFormat)
	if err != nil {
		return err
	}

	c, err := newAPIClient(ctx)
	if err != nil {
		return err
	}

	var rendered map[string]any
	if exportRemote {
		rendered, err = c.Functions.GetDefinition(ctx, args[0], format)
		if err != nil {
			return fmt.Errorf("failed to fetch definition: %w", err)
		}
	} else {
		function, getErr := c.Functions.Get(ctx, args[0])
		if getErr != nil {
			return fmt.Errorf("failed to get function: %w", getErr)
		}
		rendered, err = openapi.FormatDefinition(*function, format)
		if err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if exportOutput == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := writeOutputFile(exportOutput, out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s.\n", exportOutput)
	return nil
}

// fetchAllFunctions pages through every stored function of an app.
func fetchAllFunctions(ctx context.Context, c *client.Client, appName string) ([]client.Function, error) {
	var all []client.Function
	offset := 0
	for {
		page, err := c.Functions.List(ctx, client.ListFunctionsParams{
			ListParams: client.ListParams{Offset: offset, Limit: upsertPageSize},
			AppNames:   []string{appName},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list existing functions: %w", err)
		}
		all = append(all, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}
	return all, nil
}

func writeOutputFile(path string, data []byte) error {
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
