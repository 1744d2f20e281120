// Package cli provides the graphmail command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphmail/internal/adapters/driven/config/file"
	"github.com/custodia-labs/graphmail/internal/adapters/driven/eml"
	"github.com/custodia-labs/graphmail/internal/adapters/driven/oauth"
	"github.com/custodia-labs/graphmail/internal/app"
	"github.com/custodia-labs/graphmail/internal/config"
	"github.com/custodia-labs/graphmail/internal/connectors/microsoft"
	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
	"github.com/custodia-labs/graphmail/internal/core/ports/driving"
	"github.com/custodia-labs/graphmail/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	verbose   bool
	configDir string
	logFormat string
)

// Services used by commands. Built on first use by ensureServices; tests
// assign mocks directly.
var (
	mailService   driving.MailService
	authService   driving.AuthService
	configStore   driven.ConfigStore
	clientConfig  *domain.ClientConfig
	messageParser driven.MessageParser = eml.New()
)

// errNotConfigured is returned when a command needs credentials that are not set.
var errNotConfigured = errors.New("graphmail is not configured, run 'graphmail config init' or set GRAPHMAIL_* variables")

var rootCmd = &cobra.Command{
	Use:   "graphmail",
	Short: "Send, list and delete mail through Microsoft Graph",
	Long: `graphmail talks to the Microsoft Graph mail API as an application,
using the OAuth2 client-credentials grant.

Credentials and the sender identity come from ~/.graphmail/config.toml,
GRAPHMAIL_* environment variables or a .env file in the working directory.
Environment variables take precedence over the config file.`,
	SilenceUsage:      true,
	PersistentPreRunE: applyLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.graphmail)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if hint := errorHint(err); hint != "" {
		rootCmd.PrintErrln(hint)
	}
	return err
}

// errorHint suggests a next step for failures the user can act on.
func errorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case microsoft.IsRateLimitExceeded(err), microsoft.IsRateLimited(err):
		return "Hint: Microsoft Graph is throttling this application. Wait a few minutes or lower " +
			config.KeyRequestsPerSecond + "."
	case microsoft.IsForbidden(err):
		return "Hint: the application needs the Mail.Send and Mail.ReadWrite application permissions with admin consent."
	case oauth.IsTokenError(err):
		return "Hint: check the tenant ID, client ID and secret, then run 'graphmail auth check'."
	}
	return ""
}

func applyLogging(cmd *cobra.Command, _ []string) error {
	format, err := logger.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	logger.SetFormat(format)
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

// ensureConfigStore opens the TOML store on first use.
func ensureConfigStore() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	configStore = store
	return configStore, nil
}

// ensureServices resolves the configuration and builds the Graph services
// unless they are already set.
func ensureServices() error {
	if mailService != nil && authService != nil {
		return nil
	}

	store, err := ensureConfigStore()
	if err != nil {
		return err
	}
	cfg, err := config.Load(store, os.LookupEnv)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w: %w", errNotConfigured, err)
		}
		return err
	}
	cfg.Verbose = verbose

	a, err := app.New(cfg, logger.Default())
	if err != nil {
		return err
	}

	mailService = a.Mail
	authService = a.Auth
	clientConfig = &a.Config
	logger.Info("using %s", cfg)
	return nil
}

func requireMailService() (driving.MailService, error) {
	if mailService == nil {
		if err := ensureServices(); err != nil {
			return nil, err
		}
	}
	return mailService, nil
}

func requireAuthService() (driving.AuthService, error) {
	if authService == nil {
		if err := ensureServices(); err != nil {
			return nil, err
		}
	}
	return authService, nil
}
