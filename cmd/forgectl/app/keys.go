package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	keysListFormat string
	keysListOffset int
	keysListLimit  int
)

func newKeysCommand() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys for the project",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE:  keysListCmdFunc,
	}
	addFormatFlag(listCmd, &keysListFormat)
	addPagingFlags(listCmd, &keysListOffset, &keysListLimit)

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an API key",
		Args:  cobra.ExactArgs(1),
		RunE:  keysCreateCmdFunc,
	}

	rotateCmd := &cobra.Command{
		Use:   "rotate <id>",
		Short: "Rotate an API key",
		Long:  "Rotate an API key. The old key material stops working immediately.",
		Args:  cobra.ExactArgs(1),
		RunE:  keysRotateCmdFunc,
	}
	rotateCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE:  keysDeleteCmdFunc,
	}
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	keysCmd.AddCommand(listCmd, createCmd, rotateCmd, deleteCmd)
	return keysCmd
}

func keysListCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.APIKeys.List(cmd.Context(), client.ListParams{
		Offset: keysListOffset,
		Limit:  keysListLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list API keys: %w", err)
	}

	if outputFormat(keysListFormat) == FormatJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No API keys found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED")
	for _, key := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			key.ID,
			key.Name,
			key.Status,
			key.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func keysCreateCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	key, err := c.APIKeys.Create(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	fmt.Printf("API key %s created.\n", key.Name)
	fmt.Printf("Key: %s\n", key.Key)
	fmt.Println("Store this key now, it will not be shown again.")
	return nil
}

func keysRotateCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Rotate API key %s? The current key stops working immediately.", args[0]))
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

	key, err := c.APIKeys.Rotate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to rotate API key: %w", err)
	}

	fmt.Printf("API key %s rotated.\n", key.Name)
	fmt.Printf("Key: %s\n", key.Key)
	fmt.Println("Store this key now, it will not be shown again.")
	return nil
}

func keysDeleteCmdFunc(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	confirmed, err := confirmAction(skipConfirm,
		fmt.Sprintf("Delete API key %s?", args[0]))
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

	if err := c.APIKeys.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	fmt.Printf("API key %s deleted.\n", args[0])
	return nil
}
