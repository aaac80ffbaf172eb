package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appforge-io/forgectl/pkg/client"
	"github.com/appforge-io/forgectl/pkg/config"
	"github.com/appforge-io/forgectl/pkg/secrets"
)

// newAPIClient builds a platform API client from the configured endpoint
// and the stored or environment-provided API key.
func newAPIClient(ctx context.Context) (*client.Client, error) {
	endpoint, allowInsecure := config.NewDefaultProvider().GetAPIEndpoint()

	apiKey, err := resolveAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	return client.New(endpoint, apiKey, client.WithAllowInsecure(allowInsecure))
}

// resolveAPIKey returns the API key from the environment variable, falling
// back to the configured secrets provider.
func resolveAPIKey(ctx context.Context) (string, error) {
	if key := os.Getenv(client.APIKeyEnvVar); key != "" {
		return key, nil
	}

	manager, err := getSecretsProvider()
	if err != nil {
		return "", err
	}

	key, err := manager.GetSecret(ctx, client.APIKeySecretName)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return "", fmt.Errorf("no API key found: run 'forgectl auth login' or set %s", client.APIKeyEnvVar)
		}
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	return key, nil
}

// getSecretsProvider creates the configured secrets provider.
func getSecretsProvider() (secrets.Provider, error) {
	cfg := config.NewDefaultProvider().GetConfig()

	providerType, err := cfg.Secrets.GetProviderType()
	if err != nil {
		return nil, err
	}

	return secrets.CreateSecretProvider(providerType)
}

// setupSecretsProvider validates and persists the secrets provider type.
func setupSecretsProvider(ctx context.Context, providerType secrets.ProviderType) error {
	switch providerType {
	case secrets.EncryptedType, secrets.EnvironmentType, secrets.NoneType:
	default:
		return fmt.Errorf("invalid secrets provider type: %s (valid types: %s, %s, %s)",
			providerType, secrets.EncryptedType, secrets.EnvironmentType, secrets.NoneType)
	}

	result := secrets.ValidateProvider(ctx, providerType)
	if !result.Success {
		return fmt.Errorf("provider validation failed: %w", result.Error)
	}

	err := config.UpdateConfig(func(c *config.Config) {
		c.Secrets.ProviderType = string(providerType)
		c.Secrets.SetupCompleted = true
	})
	if err != nil {
		return fmt.Errorf("error updating configuration: %w", err)
	}

	fmt.Printf("Secrets provider type updated to: %s\n", providerType)
	return nil
}

// addFormatFlag adds the --format flag. The empty default means the
// configured default format applies.
func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", "", "Output format (json or text)")
}

// addPagingFlags adds the --offset and --limit flags for list commands.
func addPagingFlags(cmd *cobra.Command, offset, limit *int) {
	cmd.Flags().IntVar(offset, "offset", 0, "Number of results to skip")
	cmd.Flags().IntVar(limit, "limit", 0, "Maximum number of results (0 uses the server default)")
}

// outputFormat resolves the effective output format from the --format flag
// value and the configured default.
func outputFormat(flagValue string) string {
	switch flagValue {
	case FormatJSON, FormatText:
		return flagValue
	}

	if format := config.NewDefaultProvider().GetConfig().Output.DefaultFormat; format != "" {
		return format
	}
	return FormatText
}

// confirmAction prompts for confirmation on stdin unless skip is set.
func confirmAction(skip bool, prompt string) (bool, error) {
	if skip {
		return true, nil
	}

	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// printJSON prints v as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// joinOrNone joins values with commas, or returns "none" for an empty list.
func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

// truncateString truncates a string to maxLen characters, ending with an
// ellipsis when anything was cut.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// parseTimeFlag parses a time filter value. It accepts an RFC3339 timestamp
// or a duration like "24h", interpreted as that long before now.
func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: expected an RFC3339 timestamp or a duration like 24h", value)
	}

	ts := time.Now().Add(-d).UTC()
	return &ts, nil
}
