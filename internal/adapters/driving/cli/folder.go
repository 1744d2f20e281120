package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

var folderMailbox string

var folderCmd = &cobra.Command{
	Use:   "folder [name-or-id]",
	Short: "Show a mail folder",
	Long: `Show the Graph record for a mail folder. The argument is a well-known
folder name (inbox, sentitems, drafts, deleteditems, archive) or a folder id.
Defaults to inbox.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFolder,
}

func init() {
	folderCmd.Flags().StringVarP(&folderMailbox, "mailbox", "m", "", "mailbox to read (default: the sender)")
	rootCmd.AddCommand(folderCmd)
}

func runFolder(cmd *cobra.Command, args []string) error {
	svc, err := requireMailService()
	if err != nil {
		return err
	}

	name := domain.DefaultFolder
	if len(args) == 1 {
		name = args[0]
	}

	folder, err := svc.GetMailFolder(cmd.Context(), folderMailbox, name)
	if err != nil {
		return fmt.Errorf("get folder failed: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, folder, "", "  "); err != nil {
		return fmt.Errorf("failed to format folder: %w", err)
	}
	cmd.Println(out.String())
	return nil
}
