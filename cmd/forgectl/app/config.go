package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/config"
	"github.com/appforge-io/forgectl/pkg/secrets"
)

var configShowFormat string

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage forgectl configuration",
		Long:  "Show and change the forgectl configuration, such as the API endpoint and the default output format.",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE:  configShowCmdFunc,
	}
	addFormatFlag(showCmd, &configShowFormat)

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Valid keys:

  endpoint          Platform API endpoint (https required unless --allow-insecure)
  format            Default output format (json or text)
  secrets-provider  Secrets provider type (encrypted, environment, none)
  catalog-db        Path of the local catalog cache database`,
		Args: cobra.ExactArgs(2),
		RunE: configSetCmdFunc,
	}
	setCmd.Flags().Bool("allow-insecure", false, "Allow a plain http endpoint (endpoint key only)")

	unsetCmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE:  configUnsetCmdFunc,
	}

	configCmd.AddCommand(showCmd, setCmd, unsetCmd)
	return configCmd
}

func configShowCmdFunc(_ *cobra.Command, _ []string) error {
	provider := config.NewDefaultProvider()
	cfg := provider.GetConfig()
	endpoint, allowInsecure := provider.GetAPIEndpoint()

	secretsProvider := cfg.Secrets.ProviderType
	if !cfg.Secrets.SetupCompleted {
		secretsProvider = ""
	}

	if outputFormat(configShowFormat) == FormatJSON {
		return printJSON(map[string]any{
			"endpoint":         endpoint,
			"allow_insecure":   allowInsecure,
			"secrets_provider": secretsProvider,
			"default_format":   cfg.Output.DefaultFormat,
			"catalog_db":       cfg.Catalog.DBPath,
		})
	}

	fmt.Printf("Endpoint: %s\n", endpoint)
	fmt.Printf("Allow insecure: %t\n", allowInsecure)
	if secretsProvider == "" {
		fmt.Println("Secrets provider: not configured")
	} else {
		fmt.Printf("Secrets provider: %s\n", secretsProvider)
	}
	if cfg.Output.DefaultFormat != "" {
		fmt.Printf("Default format: %s\n", cfg.Output.DefaultFormat)
	}
	if cfg.Catalog.DBPath != "" {
		fmt.Printf("Catalog database: %s\n", cfg.Catalog.DBPath)
	}
	return nil
}

func configSetCmdFunc(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	provider := config.NewDefaultProvider()

	switch key {
	case "endpoint":
		allowInsecure, _ := cmd.Flags().GetBool("allow-insecure")
		if err := provider.SetAPIEndpoint(value, allowInsecure); err != nil {
			return err
		}
		fmt.Printf("API endpoint set to: %s\n", value)

	case "format":
		if value != FormatJSON && value != FormatText {
			return fmt.Errorf("invalid format %q (valid: %s, %s)", value, FormatJSON, FormatText)
		}
		if err := provider.UpdateConfig(func(c *config.Config) {
			c.Output.DefaultFormat = value
		}); err != nil {
			return fmt.Errorf("error updating configuration: %w", err)
		}
		fmt.Printf("Default output format set to: %s\n", value)

	case "secrets-provider":
		return setupSecretsProvider(cmd.Context(), secrets.ProviderType(value))

	case "catalog-db":
		if err := provider.UpdateConfig(func(c *config.Config) {
			c.Catalog.DBPath = value
		}); err != nil {
			return fmt.Errorf("error updating configuration: %w", err)
		}
		fmt.Printf("Catalog database path set to: %s\n", value)

	default:
		return fmt.Errorf("unknown config key %q (valid keys: endpoint, format, secrets-provider, catalog-db)", key)
	}
	return nil
}

func configUnsetCmdFunc(_ *cobra.Command, args []string) error {
	key := args[0]
	provider := config.NewDefaultProvider()

	switch key {
	case "endpoint":
		if err := provider.UnsetAPIEndpoint(); err != nil {
			return err
		}
		fmt.Printf("API endpoint reset to: %s\n", config.DefaultAPIEndpoint)

	case "format":
		if err := provider.UpdateConfig(func(c *config.Config) {
			c.Output.DefaultFormat = ""
		}); err != nil {
			return fmt.Errorf("error updating configuration: %w", err)
		}
		fmt.Println("Default output format reset.")

	case "catalog-db":
		if err := provider.UpdateConfig(func(c *config.Config) {
			c.Catalog.DBPath = ""
		}); err != nil {
			return fmt.Errorf("error updating configuration: %w", err)
		}
		fmt.Println("Catalog database path reset.")

	default:
		return fmt.Errorf("unknown config key %q (valid keys: endpoint, format, catalog-db)", key)
	}
	return nil
}
