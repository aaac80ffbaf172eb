package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/versions"
)

var versionFormat string

func newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the forgectl version",
		Args:  cobra.NoArgs,
		RunE:  versionCmdFunc,
	}
	addFormatFlag(versionCmd, &versionFormat)
	return versionCmd
}

func versionCmdFunc(_ *cobra.Command, _ []string) error {
	info := versions.GetVersionInfo()

	if outputFormat(versionFormat) == FormatJSON {
		return printJSON(info)
	}

	fmt.Printf("forgectl %s\n", info.Version)
	fmt.Printf("Commit: %s\n", info.Commit)
	fmt.Printf("Built: %s\n", info.BuildDate)
	fmt.Printf("Go version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s\n", info.Platform)
	return nil
}
