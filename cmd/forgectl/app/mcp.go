package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
	"github.com/appforge-io/forgectl/pkg/logger"
	"github.com/appforge-io/forgectl/pkg/versions"
)

// Transport types accepted by the --transport flag.
const (
	transportAuto           = "auto"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

var (
	mcpListFormat    string
	mcpListOffset    int
	mcpListLimit     int
	mcpGetFormat     string
	mcpCreateName    string
	mcpCreateConfigs []string
	mcpCreateTools   []string
	mcpUpdateTools   []string

	mcpToolsServer    string
	mcpToolsFormat    string
	mcpToolsTimeout   time.Duration
	mcpToolsTransport string
)

func newMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage MCP servers",
		Long: `Manage the project's MCP (Model Context Protocol) servers and probe
a live server for the tools it exposes.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List MCP servers",
		Args:  cobra.NoArgs,
		RunE:  mcpListCmdFunc,
	}
	addFormatFlag(listCmd, &mcpListFormat)
	addPagingFlags(listCmd, &mcpListOffset, &mcpListLimit)

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an MCP server",
		Args:  cobra.ExactArgs(1),
		RunE:  mcpGetCmdFunc,
	}
	addFormatFlag(getCmd, &mcpGetFormat)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an MCP server",
		Long:  "Create an MCP server exposing the functions of one or more app configurations.",
		Args:  cobra.NoArgs,
		RunE:  mcpCreateCmdFunc,
	}
	createCmd.Flags().StringVar(&mcpCreateName, "name", "", "Name of the MCP server")
	createCmd.Flags().StringArrayVar(&mcpCreateConfigs, "app-config", nil, "App configuration ID to expose (repeatable)")
	createCmd.Flags().StringArrayVar(&mcpCreateTools, "tool", nil, "Restrict to the named tool (repeatable)")
	if err := createCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	if err := createCmd.MarkFlagRequired("app-config"); err != nil {
		panic(err)
	}

	updateToolsCmd := &cobra.Command{
		Use:   "update-tools <id>",
		Short: "Replace the allowed tools of an MCP server",
		Args:  cobra.ExactArgs(1),
		RunE:  mcpUpdateToolsCmdFunc,
	}
	updateToolsCmd.Flags().StringArrayVar(&mcpUpdateTools, "tool", nil, "Allowed tool name (repeatable, empty allows all)")

	regenerateLinkCmd := &cobra.Command{
		Use:   "regenerate-link <id>",
		Short: "Regenerate the link of an MCP server",
		Long:  "Regenerate the link of an MCP server. The old link stops working immediately.",
		Args:  cobra.ExactArgs(1),
		RunE:  mcpRegenerateLinkCmdFunc,
	}
	regenerateLinkCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an MCP server",
		Args:  cobra.ExactArgs(1),
		RunE:  mcpDeleteCmdFunc,
	}
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools of a live MCP server",
		Long: `Connect to an MCP server and list the tools it exposes.

The --server value is either a URL or the name of a configured MCP
server, which resolves through the platform to its link.`,
		Args: cobra.NoArgs,
		RunE: mcpToolsCmdFunc,
	}
	toolsCmd.Flags().StringVar(&mcpToolsServer, "server", "", "MCP server URL or configured server name (required)")
	toolsCmd.Flags().StringVar(&mcpToolsFormat, "format", "", "Output format (json or text)")
	toolsCmd.Flags().DurationVar(&mcpToolsTimeout, "timeout", 30*time.Second, "Connection timeout")
	toolsCmd.Flags().StringVar(&mcpToolsTransport, "transport", transportAuto, "Transport type (auto, sse, streamable-http)")
	if err := toolsCmd.MarkFlagRequired("server"); err != nil {
		panic(err)
	}

	mcpCmd.AddCommand(listCmd, getCmd, createCmd, updateToolsCmd, regenerateLinkCmd, deleteCmd, toolsCmd)
	return mcpCmd
}

func mcpListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.MCPServers.List(cmd.Context(), client.ListParams{
		Offset: mcpListOffset,
		Limit:  mcpListLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list MCP servers: %w", err)
	}

	if outputFormat(mcpListFormat) == FormatJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No MCP servers found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAPP CONFIGS\tTOOLS\tLAST USED")
	for _, server := range page.Items {
		lastUsed := "never"
		if server.LastUsedAt != nil {
			lastUsed = server.LastUsedAt.Format("2006-01-02 15:04:05")
		}
		tools := "all"
		if len(server.AllowedTools) > 0 {
			tools = fmt.Sprintf("%d allowed", len(server.AllowedTools))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			server.ID,
			server.Name,
			len(server.AppConfigIDs),
			tools,
			lastUsed,
		)
	}
	return w.Flush()
}

func mcpGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	server, err := c.MCPServers.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get MCP server: %w", err)
	}

	if outputFormat(mcpGetFormat) == FormatJSON {
		return printJSON(server)
	}

	fmt.Printf("ID: %s\n", server.ID)
	fmt.Printf("Name: %s\n", server.Name)
	fmt.Printf("Link: %s\n", server.MCPLink)
	fmt.Printf("App configs: %s\n", joinOrNone(server.AppConfigIDs))
	if len(server.AllowedTools) == 0 {
		fmt.Println("Allowed tools: all")
	} else {
		fmt.Printf("Allowed tools: %s\n", strings.Join(server.AllowedTools, ", "))
	}
	if server.LastUsedAt != nil {
		fmt.Printf("Last used: %s\n", server.LastUsedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func mcpCreateCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	server, err := c.MCPServers.Create(cmd.Context(), client.CreateMCPServerRequest{
		Name:         mcpCreateName,
		AppConfigIDs: mcpCreateConfigs,
		AllowedTools: mcpCreateTools,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Printf("MCP server %s created.\n", server.Name)
	fmt.Printf("Link: %s\n", server.MCPLink)
	return nil
}

func mcpUpdateToolsCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	server, err := c.MCPServers.UpdateTools(cmd.Context(), args[0], mcpUpdateTools)
	if err != nil {
		return fmt.Errorf("failed to update MCP server tools: %w", err)
	}

	if len(server.AllowedTools) == 0 {
		fmt.Printf("MCP server %s now allows all tools.\n", server.Name)
	} else {
		fmt.Printf("MCP server %s now allows %d tools.\n", server.Name, len(server.AllowedTools))
	}
	return nil
}

func mcpRegenerateLinkCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Regenerate the link of MCP server %s? The current link stops working immediately.", args[0]))
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

	server, err := c.MCPServers.RegenerateLink(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to regenerate MCP server link: %w", err)
	}

	fmt.Printf("Link regenerated for MCP server %s.\n", server.Name)
	fmt.Printf("Link: %s\n", server.MCPLink)
	return nil
}

func mcpDeleteCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Delete MCP server %s?", args[0]))
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

	if err := c.MCPServers.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete MCP server: %w", err)
	}

	fmt.Printf("MCP server %s deleted.\n", args[0])
	return nil
}

func mcpToolsCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), mcpToolsTimeout)
	defer cancel()

	serverURL, err := resolveMCPServerURL(ctx, mcpToolsServer)
	if err != nil {
		return err
	}

	session, err := newMCPSession(ctx, serverURL, mcpToolsTransport)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	if outputFormat(mcpToolsFormat) == FormatJSON {
		return printJSON(result.Tools)
	}

	if len(result.Tools) == 0 {
		fmt.Println("No tools found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, tool := range result.Tools {
		fmt.Fprintf(w, "%s\t%s\n", tool.Name, truncateString(tool.Description, 80))
	}
	return w.Flush()
}

// resolveMCPServerURL resolves a server name to its MCP link, or returns
// the input unchanged if it is already a URL.
func resolveMCPServerURL(ctx context.Context, serverInput string) (string, error) {
	if strings.HasPrefix(serverInput, "http://") || strings.HasPrefix(serverInput, "https://") {
		return serverInput, nil
	}

	c, err := newAPIClient(ctx)
	if err != nil {
		return "", err
	}

	page, err := c.MCPServers.List(ctx, client.ListParams{})
	if err != nil {
		return "", fmt.Errorf("failed to list MCP servers: %w", err)
	}
	for _, server := range page.Items {
		if server.Name == serverInput {
			return server.MCPLink, nil
		}
	}

	return "", fmt.Errorf("MCP server %q not found, provide a URL or the name of a configured server", serverInput)
}

// newMCPSession connects to an MCP server and returns the initialized session.
func newMCPSession(ctx context.Context, serverURL, transportFlag string) (*mcp.ClientSession, error) {
	transportType := determineTransportType(serverURL, transportFlag)

	mcpClient := mcp.NewClient(
		&mcp.Implementation{
			Name:    "forgectl",
			Version: versions.Version,
		},
		&mcp.ClientOptions{},
	)

	var transport mcp.Transport
	switch transportType {
	case transportSSE:
		transport = &mcp.SSEClientTransport{
			Endpoint: serverURL,
		}
	case transportStreamableHTTP:
		transport = &mcp.StreamableClientTransport{
			Endpoint:   serverURL,
			MaxRetries: 5,
		}
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}
	return session, nil
}

// determineTransportType picks the transport from the flag, or from the URL
// path when the flag is auto.
func determineTransportType(serverURL, transportFlag string) string {
	if transportFlag != transportAuto {
		return transportFlag
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		logger.Warnf("Failed to parse server URL %s, defaulting to streamable HTTP transport: %v", serverURL, err)
		return transportStreamableHTTP
	}

	if strings.HasSuffix(parsedURL.Path, "/sse") {
		return transportSSE
	}

	// Platform MCP links end in /mcp and speak streamable HTTP.
	return transportStreamableHTTP
}
