package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/graphmail/internal/config"
	"github.com/custodia-labs/graphmail/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage graphmail configuration",
	Long: `View and change the settings stored in ~/.graphmail/config.toml.

Every key can also be set with an environment variable; run
'graphmail config show' to see the variable names.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively set credentials and sender",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := ensureConfigStore()
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := ensureConfigStore()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(store, os.LookupEnv)
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", store.Path())
	for _, s := range config.Settings {
		source := "default"
		if v, ok := os.LookupEnv(s.Env); ok && strings.TrimSpace(v) != "" {
			source = "env " + s.Env
		} else if _, ok := store.Get(s.Key); ok {
			source = "file"
		}

		value := settingValue(cfg, s.Key)
		if s.Secret && value != "" {
			value = maskSecret(value)
		}
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-28s %-40s [%s]\n", s.Key, value, source)
	}

	var unknown []string
	for _, key := range store.Keys() {
		if _, ok := config.Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		cmd.Printf("\nIgnored keys: %s\n", strings.Join(unknown, ", "))
	}

	if err := cfg.Validate(); err != nil {
		cmd.Printf("\nIncomplete: %v\n", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := ensureConfigStore()
	if err != nil {
		return err
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("graphmail setup")
	cmd.Println("Register an application in Entra ID with the Mail.Send and")
	cmd.Println("Mail.ReadWrite application permissions, then enter its details.")
	cmd.Println()

	prompts := []struct {
		key   string
		label string
	}{
		{config.KeyTenantID, "Tenant ID"},
		{config.KeyClientID, "Client ID"},
		{config.KeyClientSecret, "Client secret"},
		{config.KeySenderName, "Sender name"},
		{config.KeySenderAddress, "Sender address"},
	}

	for _, p := range prompts {
		current := store.GetString(p.key)
		s, _ := config.Lookup(p.key)

		shown := current
		if s.Secret && current != "" {
			shown = maskSecret(current)
		}
		if shown != "" {
			cmd.Printf("%s [%s]: ", p.label, shown)
		} else {
			cmd.Printf("%s: ", p.label)
		}

		var input string
		if s.Secret {
			input = readSecret(cmd, reader)
		} else {
			input = readLine(reader)
		}
		if input == "" {
			if current == "" {
				return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, p.label)
			}
			continue
		}
		if err := store.Set(p.key, input); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	cmd.Printf("\nSaved to %s\n", store.Path())
	cmd.Println("Run 'graphmail auth check' to verify the credentials.")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := ensureConfigStore()
	if err != nil {
		return err
	}

	key := args[0]
	value, err := config.ParseValue(key, args[1])
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	store, err := ensureConfigStore()
	if err != nil {
		return err
	}

	key := args[0]
	if _, ok := config.Lookup(key); !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	cmd.Printf("Unset %s\n", key)
	return nil
}

// settingValue renders the resolved value of key for display.
func settingValue(cfg domain.ClientConfig, key string) string {
	switch key {
	case config.KeyTenantID:
		return cfg.TenantID
	case config.KeyClientID:
		return cfg.ClientID
	case config.KeyClientSecret:
		return cfg.ClientSecret
	case config.KeyScopes:
		return strings.Join(cfg.Scopes, ",")
	case config.KeySenderName:
		return cfg.SenderName
	case config.KeySenderAddress:
		return cfg.SenderAddress
	case config.KeyMaxRetries:
		return strconv.Itoa(cfg.MaxRetries)
	case config.KeyRequestsPerSecond:
		return strconv.FormatFloat(cfg.RequestsPerSecond, 'g', -1, 64)
	case config.KeyBurst:
		return strconv.Itoa(cfg.Burst)
	case config.KeyTimeoutSeconds:
		return strconv.Itoa(int(cfg.Timeout.Seconds()))
	case config.KeyLogPayloads:
		return strconv.FormatBool(cfg.LogPayloads)
	case config.KeyGraphBaseURL:
		return cfg.GraphBaseURL
	case config.KeyAuthority:
		return cfg.Authority
	default:
		return ""
	}
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads without echo when the input is a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
