package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var quotaFormat string

func newQuotaCommand() *cobra.Command {
	quotaCmd := &cobra.Command{
		Use:   "quota",
		Short: "Show the project's quota usage",
		Args:  cobra.NoArgs,
		RunE:  quotaCmdFunc,
	}
	addFormatFlag(quotaCmd, &quotaFormat)
	return quotaCmd
}

func quotaCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	project, err := c.Project.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch project quota: %w", err)
	}

	if outputFormat(quotaFormat) == FormatJSON {
		return printJSON(project)
	}

	fmt.Printf("Project: %s\n", project.Name)
	fmt.Printf("Plan: %s\n", project.Plan)
	fmt.Printf("Daily quota used: %d\n", project.DailyQuotaUsed)
	fmt.Printf("Daily quota resets: %s\n", project.DailyQuotaResetAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Monthly API quota used: %d\n", project.APIQuotaMonthlyUsed)
	fmt.Printf("Monthly quota last reset: %s\n", project.APIQuotaLastReset.Format("2006-01-02 15:04:05"))
	fmt.Printf("Total quota used: %d\n", project.TotalQuotaUsed)
	return nil
}
