package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/appforge-io/forgectl/pkg/client"
	"github.com/appforge-io/forgectl/pkg/config"
	forgeerrors "github.com/appforge-io/forgectl/pkg/errors"
	"github.com/appforge-io/forgectl/pkg/secrets"
)

func newAuthCommand() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage platform credentials",
		Long:  "Store, check, and remove the API key used to authenticate against the platform.",
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long: `Store an API key in the configured secrets provider.

The key is read from stdin when piped, or prompted for interactively.
Unless --skip-verify is given, the key is checked against the platform
before it is stored.`,
		Args: cobra.NoArgs,
		RunE: authLoginCmdFunc,
	}
	loginCmd.Flags().String("provider", string(secrets.EncryptedType),
		fmt.Sprintf("Secrets provider to set up if none is configured (%s, %s, %s)",
			secrets.EncryptedType, secrets.EnvironmentType, secrets.NoneType))
	loginCmd.Flags().Bool("skip-verify", false, "Store the key without checking it against the platform")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE:  authLogoutCmdFunc,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the authentication status",
		Long:  "Show the configured endpoint, where the API key comes from, and whether the platform accepts it.",
		Args:  cobra.NoArgs,
		RunE:  authStatusCmdFunc,
	}

	authCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
	return authCmd
}

func authLoginCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	apiKey, err := readAPIKey()
	if err != nil {
		return err
	}
	if apiKey == "" {
		return fmt.Errorf("API key must not be empty")
	}

	manager, err := getSecretsProvider()
	if errors.Is(err, secrets.ErrSecretsNotSetup) {
		providerType, _ := cmd.Flags().GetString("provider")
		if err := setupSecretsProvider(ctx, secrets.ProviderType(providerType)); err != nil {
			return err
		}
		manager, err = getSecretsProvider()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if !manager.Capabilities().CanWrite {
		return fmt.Errorf("the configured secrets provider cannot store secrets; set %s instead", client.APIKeyEnvVar)
	}

	skipVerify, _ := cmd.Flags().GetBool("skip-verify")
	if !skipVerify {
		endpoint, allowInsecure := config.NewDefaultProvider().GetAPIEndpoint()
		c, err := client.New(endpoint, apiKey, client.WithAllowInsecure(allowInsecure))
		if err != nil {
			return err
		}
		project, err := c.Project.Get(ctx)
		if err != nil {
			if forgeerrors.IsUnauthorized(err) {
				return fmt.Errorf("the platform rejected the API key: %w", err)
			}
			return fmt.Errorf("failed to verify the API key: %w", err)
		}
		fmt.Printf("Authenticated against project %s (%s plan).\n", project.Name, project.Plan)
	}

	if err := manager.SetSecret(ctx, client.APIKeySecretName, apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Println("API key stored.")
	return nil
}

func authLogoutCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	manager, err := getSecretsProvider()
	if errors.Is(err, secrets.ErrSecretsNotSetup) {
		fmt.Println("No API key stored.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if !manager.Capabilities().CanDelete {
		return fmt.Errorf("the configured secrets provider cannot delete secrets")
	}

	if err := manager.DeleteSecret(ctx, client.APIKeySecretName); err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			fmt.Println("No API key stored.")
			return nil
		}
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	fmt.Println("API key removed.")
	return nil
}

func authStatusCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	endpoint, allowInsecure := config.NewDefaultProvider().GetAPIEndpoint()
	fmt.Printf("Endpoint: %s\n", endpoint)
	if allowInsecure {
		fmt.Println("Insecure endpoints allowed.")
	}

	source := apiKeySource(ctx)
	if source == "" {
		fmt.Println("API key: not configured")
		return nil
	}
	fmt.Printf("API key: configured (%s)\n", source)

	c, err := newAPIClient(ctx)
	if err != nil {
		return err
	}
	project, err := c.Project.Get(ctx)
	if err != nil {
		if forgeerrors.IsUnauthorized(err) {
			return fmt.Errorf("the platform rejected the API key: %w", err)
		}
		return fmt.Errorf("failed to reach the platform: %w", err)
	}

	fmt.Printf("Project: %s (%s plan)\n", project.Name, project.Plan)
	return nil
}

// apiKeySource reports where the API key would be read from, or the empty
// string if no key is available.
func apiKeySource(ctx context.Context) string {
	if os.Getenv(client.APIKeyEnvVar) != "" {
		return "environment"
	}

	manager, err := getSecretsProvider()
	if err != nil {
		return ""
	}
	if _, err := manager.GetSecret(ctx, client.APIKeySecretName); err != nil {
		return ""
	}
	return "secrets provider"
}

// readAPIKey reads the API key from stdin when piped, or prompts for it
// with hidden input.
func readAPIKey() (string, error) {
	// Check if data is being piped into stdin
	stat, _ := os.Stdin.Stat()
	isPiped := (stat.Mode() & os.ModeCharDevice) == 0

	if isPiped {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read API key from stdin: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}

	fmt.Print("Enter API key (input will be hidden): ")
	key, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Add a newline after the hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read API key from terminal: %w", err)
	}
	return string(key), nil
}
