package app

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
)

var (
	analyticsAppsFormat          string
	analyticsAppsTimeseries      bool
	analyticsFunctionsFormat     string
	analyticsFunctionsTimeseries bool
)

func newAnalyticsCommand() *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show usage analytics for the project",
	}

	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "Show app usage",
		Args:  cobra.NoArgs,
		RunE:  analyticsAppsCmdFunc,
	}
	addFormatFlag(appsCmd, &analyticsAppsFormat)
	appsCmd.Flags().BoolVar(&analyticsAppsTimeseries, "timeseries", false, "Show usage per day instead of totals")

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "Show function usage",
		Args:  cobra.NoArgs,
		RunE:  analyticsFunctionsCmdFunc,
	}
	addFormatFlag(functionsCmd, &analyticsFunctionsFormat)
	functionsCmd.Flags().BoolVar(&analyticsFunctionsTimeseries, "timeseries", false, "Show usage per day instead of totals")

	analyticsCmd.AddCommand(appsCmd, functionsCmd)
	return analyticsCmd
}

func analyticsAppsCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	if analyticsAppsTimeseries {
		series, err := c.Analytics.AppUsageTimeseries(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch app usage: %w", err)
		}
		return renderTimeseries(series, analyticsAppsFormat)
	}

	distribution, err := c.Analytics.AppUsageDistribution(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch app usage: %w", err)
	}
	return renderDistribution(distribution, analyticsAppsFormat)
}

func analyticsFunctionsCmdFunc(cmd *cobra.Command, _ []string) error {
	c, err := newAPIClient(cmd.Context())
	if err != nil {
		return err
	}

	if analyticsFunctionsTimeseries {
		series, err := c.Analytics.FunctionUsageTimeseries(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch function usage: %w", err)
		}
		return renderTimeseries(series, analyticsFunctionsFormat)
	}

	distribution, err := c.Analytics.FunctionUsageDistribution(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch function usage: %w", err)
	}
	return renderDistribution(distribution, analyticsFunctionsFormat)
}

func renderDistribution(datapoints []client.DistributionDatapoint, format string) error {
	if outputFormat(format) == FormatJSON {
		return printJSON(datapoints)
	}

	if len(datapoints) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT")
	for _, datapoint := range datapoints {
		fmt.Fprintf(w, "%s\t%d\n", datapoint.Name, datapoint.Value)
	}
	return w.Flush()
}

func renderTimeseries(datapoints []client.TimeseriesDatapoint, format string) error {
	if outputFormat(format) == FormatJSON {
		return printJSON(datapoints)
	}

	if len(datapoints) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tNAME\tCOUNT")
	for _, datapoint := range datapoints {
		names := make([]string, 0, len(datapoint.Counts))
		for name := range datapoint.Counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\t%d\n", datapoint.Date, name, datapoint.Counts[name])
		}
	}
	return w.Flush()
}
