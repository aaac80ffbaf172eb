package app

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	logsListFormat   string
	logsListApp      string
	logsListFunction string
	logsListStatus   string
	logsListSince    string
	logsListUntil    string
	logsListOffset   int
	logsListLimit    int
	logsGetFormat    string
)

func newLogsCommand() *cobra.Command {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect function execution logs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List execution logs",
		Args:  cobra.NoArgs,
		RunE:  logsListCmdFunc,
	}
	addFormatFlag(listCmd, &logsListFormat)
	addPagingFlags(listCmd, &logsListOffset, &logsListLimit)
	listCmd.Flags().StringVar(&logsListApp, "app", "", "Restrict to executions of the named app")
	listCmd.Flags().StringVar(&logsListFunction, "function", "", "Restrict to executions of the named function")
	listCmd.Flags().StringVar(&logsListStatus, "status", "", "Restrict to executions with this status")
	listCmd.Flags().StringVar(&logsListSince, "since", "", "Only executions after this time (RFC3339 or duration like 24h)")
	listCmd.Flags().StringVar(&logsListUntil, "until", "", "Only executions before this time (RFC3339 or duration like 24h)")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an execution log with its payloads",
		Args:  cobra.ExactArgs(1),
		RunE:  logsGetCmdFunc,
	}
	addFormatFlag(getCmd, &logsGetFormat)

	logsCmd.AddCommand(listCmd, getCmd)
	return logsCmd
}

func logsListCmdFunc(cmd *cobra.Command, _ []string) error {
	startTime, err := parseTimeFlag(logsListSince)
	if err != nil {
		return err
	}
	endTime, err := parseTimeFlag(logsListUntil)
	if err != nil {
		return err
	}

	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := c.Logs.List(cmd.Context(), client.ListExecutionLogsParams{
		ListParams:   client.ListParams{Offset: logsListOffset, Limit: logsListLimit},
		AppName:      logsListApp,
		FunctionName: logsListFunction,
		Status:       logsListStatus,
		StartTime:    startTime,
		EndTime:      endTime,
	})
	if err != nil {
		return fmt.Errorf("failed to list execution logs: %w", err)
	}

	if outputFormat(logsListFormat) == FormatJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No execution logs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tFUNCTION\tSTATUS\tDURATION\tID")
	for _, log := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			log.ExecutionTime.Format("2006-01-02 15:04:05"),
			log.FunctionName,
			log.Status,
			(time.Duration(log.DurationMS) * time.Millisecond).String(),
			log.ID,
		)
	}
	return w.Flush()
}

func logsGetCmdFunc(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	detail, err := c.Logs.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get execution log: %w", err)
	}

	if outputFormat(logsGetFormat) == FormatJSON {
		return printJSON(detail)
	}

	fmt.Printf("ID: %s\n", detail.ID)
	fmt.Printf("Function: %s\n", detail.FunctionName)
	fmt.Printf("App: %s\n", detail.AppName)
	fmt.Printf("Owner: %s\n", detail.LinkedAccountOwnerID)
	fmt.Printf("Status: %s\n", detail.Status)
	fmt.Printf("Time: %s\n", detail.ExecutionTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", (time.Duration(detail.DurationMS) * time.Millisecond).String())
	if len(detail.FunctionInput) > 0 {
		fmt.Printf("Input: %s\n", string(detail.FunctionInput))
	}
	if len(detail.FunctionOutput) > 0 {
		fmt.Printf("Output: %s\n", string(detail.FunctionOutput))
	}
	return nil
}
