package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check application credentials",
	Long: `Commands for the client-credentials grant.

The application needs the Mail.Send and Mail.ReadWrite application
permissions with admin consent in Entra ID.`,
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Request a token to verify the credentials",
	Long: `Request a new access token from the identity endpoint.
The token is not stored; only a masked form is printed.`,
	Args: cobra.NoArgs,
	RunE: runAuthCheck,
}

func init() {
	authCmd.AddCommand(authCheckCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthCheck(cmd *cobra.Command, _ []string) error {
	svc, err := requireAuthService()
	if err != nil {
		return err
	}

	info, err := svc.Verify(cmd.Context())
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	cmd.Println("Credentials OK")
	cmd.Printf("  Token type: %s\n", info.TokenType)
	cmd.Printf("  Expires:    %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("  Token:      %s\n", info.MaskedToken)
	return nil
}
