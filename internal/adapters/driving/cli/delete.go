package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteMailbox string

var deleteCmd = &cobra.Command{
	Use:   "delete [message-id]",
	Short: "Delete a message",
	Long: `Delete a message by id. Use 'graphmail list' to find ids.

Deleting a message that does not exist is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteMailbox, "mailbox", "m", "", "mailbox holding the message (default: the sender)")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := requireMailService()
	if err != nil {
		return err
	}

	id := args[0]
	if err := svc.DeleteMessage(cmd.Context(), deleteMailbox, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted message %s\n", id)
	return nil
}
