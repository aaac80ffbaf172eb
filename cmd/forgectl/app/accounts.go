package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	accountsListFormat string
	accountsListApp    string
	accountsListOwner  string
	accountsListOffset int
	accountsListLimit  int
	accountsGetFormat  string
)

func newAccountsCommand() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked accounts",
		Long:  "A linked account holds the credentials of one end user for one configured app.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List linked accounts",
		Args:  cobra.NoArgs,
		RunE:  accountsListCmdFunc,
	}
	addFormatFlag(listCmd, &accountsListFormat)
	addPagingFlags(listCmd, &accountsListOffset, &accountsListLimit)
	listCmd.Flags().StringVar(&accountsListApp, "app", "", "Restrict to accounts of the named app")
	listCmd.Flags().StringVar(&accountsListOwner, "owner", "", "Restrict to accounts of the named owner")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a linked account",
		Args:  cobra.ExactArgs(1),
		RunE:  accountsGetCmdFunc,
	}
	addFormatFlag(getCmd, &accountsGetFormat)

	enableCmd := &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable a linked account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return accountsSetEnabledCmdFunc(cmd, args[0], true)
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a linked account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return accountsSetEnabledCmdFunc(cmd, args[0], false)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a linked account",
		Args:  cobra.ExactArgs(1),
		RunE:  accountsDeleteCmdFunc,
	}
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	accountsCmd.AddCommand(listCmd, getCmd, enableCmd, disableCmd, deleteCmd)
	return accountsCmd
}

func accountsListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.Accounts.List(cmd.Context(), client.ListLinkedAccountsParams{
		ListParams:           client.ListParams{Offset: accountsListOffset, Limit: accountsListLimit},
		AppName:              accountsListApp,
		LinkedAccountOwnerID: accountsListOwner,
	})
	if err != nil {
		return fmt.Errorf("failed to list linked accounts: %w", err)
	}

	if outputFormat(accountsListFormat) == FormatJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No linked accounts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tAPP\tOWNER\tSCHEME\tENABLED\tLAST USED")
	for _, account := range page.Items {
		lastUsed := "never"
		if account.LastUsedAt != nil {
			lastUsed = account.LastUsedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			account.ID,
			account.AppName,
			account.LinkedAccountOwnerID,
			account.SecurityScheme,
			account.Enabled,
			lastUsed,
		)
	}
	return w.Flush()
}

func accountsGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	account, err := c.Accounts.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get linked account: %w", err)
	}

	if outputFormat(accountsGetFormat) == FormatJSON {
		return printJSON(account)
	}

	fmt.Printf("ID: %s\n", account.ID)
	fmt.Printf("App: %s\n", account.AppName)
	fmt.Printf("Owner: %s\n", account.LinkedAccountOwnerID)
	fmt.Printf("Security scheme: %s\n", account.SecurityScheme)
	fmt.Printf("Enabled: %t\n", account.Enabled)
	fmt.Printf("Created: %s\n", account.CreatedAt.Format("2006-01-02 15:04:05"))
	if account.LastUsedAt != nil {
		fmt.Printf("Last used: %s\n", account.LastUsedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func accountsSetEnabledCmdFunc(cmd *cobra.Command, id string, enabled bool) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	account, err := c.Accounts.SetEnabled(cmd.Context(), id, enabled)
	if err != nil {
		if enabled {
			return fmt.Errorf("failed to enable linked account: %w", err)
		}
		return fmt.Errorf("failed to disable linked account: %w", err)
	}

	state := "disabled"
	if account.Enabled {
		state = "enabled"
	}
	fmt.Printf("Linked account %s %s.\n", account.ID, state)
	return nil
}

func accountsDeleteCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Delete linked account %s?", args[0]))
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

	if err := c.Accounts.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete linked account: %w", err)
	}

	fmt.Printf("Linked account %s deleted.\n", args[0])
	return nil
}
