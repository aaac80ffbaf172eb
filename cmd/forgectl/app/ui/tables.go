// Package ui provides terminal UI helpers for the forgectl CLI.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/appforge-io/forgectl/pkg/client"
)

// RenderAppsTable renders the app catalog table to stdout.
func RenderAppsTable(apps []client.App, total int) error {
	if len(apps) == 0 {
		fmt.Println("No apps found.")
		return nil
	}

	table := newTable([]string{"Name", "Display Name", "Provider", "Version", "Active"})

	for _, app := range apps {
		if err := table.Append([]string{
			app.Name,
			app.DisplayName,
			app.Provider,
			app.Version,
			yesNo(app.Active),
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if total > len(apps) {
		fmt.Printf("Showing %d of %d apps.\n", len(apps), total)
	}
	return nil
}

// RenderFunctionsTable renders the function catalog table to stdout.
func RenderFunctionsTable(functions []client.Function, total int) error {
	if len(functions) == 0 {
		fmt.Println("No functions found.")
		return nil
	}

	table := newTable([]string{"Name", "Description", "Tags", "Active"})

	for _, function := range functions {
		if err := table.Append([]string{
			function.Name,
			truncate(function.Description, 60),
			strings.Join(function.Tags, ", "),
			yesNo(function.Active),
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if total > len(functions) {
		fmt.Printf("Showing %d of %d functions.\n", len(functions), total)
	}
	return nil
}

// RenderUpsertPlanTable renders the planned action per function to stdout.
func RenderUpsertPlanTable(plan *client.UpsertPlan) error {
	if len(plan.Entries) == 0 {
		fmt.Println("No function definitions found.")
		return nil
	}

	table := newTable([]string{"Function", "Action"})

	for _, entry := range plan.Entries {
		if err := table.Append([]string{
			entry.Definition.Name,
			string(entry.Action),
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)
	return table
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
