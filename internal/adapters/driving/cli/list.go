package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

var (
	listMailbox  string
	listFolder   string
	listFilter   string
	listSearch   string
	listSelect   []string
	listTop      int
	listNoCount  bool
	listAdvanced bool
	listMaxPages int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages in a mail folder",
	Long: `List messages in a mail folder, following every continuation link.

--filter takes an OData $filter expression and --search a $search
expression; the two cannot be combined. Filtered queries are sent with
the ConsistencyLevel: eventual header.

Examples:
  graphmail list --filter "isRead eq false" --select subject,from
  graphmail list --folder sentitems --top 50 --max-pages 2
  graphmail list --search "invoice" --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listMailbox, "mailbox", "m", "", "mailbox to read (default: the sender)")
	listCmd.Flags().StringVarP(&listFolder, "folder", "f", domain.DefaultFolder, "well-known folder name or folder id")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "OData $filter expression")
	listCmd.Flags().StringVar(&listSearch, "search", "", "$search expression")
	listCmd.Flags().StringSliceVar(&listSelect, "select", nil, "properties to return")
	listCmd.Flags().IntVarP(&listTop, "top", "n", domain.DefaultPageSize, "page size hint")
	listCmd.Flags().BoolVar(&listNoCount, "no-count", false, "do not request @odata.count")
	listCmd.Flags().BoolVar(&listAdvanced, "advanced", false, "send ConsistencyLevel: eventual")
	listCmd.Flags().IntVar(&listMaxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output raw message records as JSON")
	listCmd.MarkFlagsMutuallyExclusive("filter", "search")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	svc, err := requireMailService()
	if err != nil {
		return err
	}

	q := domain.ListQuery{
		Mailbox:       listMailbox,
		Folder:        listFolder,
		Filter:        listFilter,
		Search:        listSearch,
		Select:        listSelect,
		PageSize:      listTop,
		AdvancedQuery: listAdvanced,
		MaxPages:      listMaxPages,
	}
	if listNoCount {
		count := false
		q.IncludeCount = &count
	}

	messages, err := svc.ListMessages(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return outputMessagesJSON(cmd, messages)
	}
	outputMessagesTable(cmd, messages)
	return nil
}

func outputMessagesJSON(cmd *cobra.Command, messages []domain.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputMessagesTable(cmd *cobra.Command, messages []domain.Message) {
	if len(messages) == 0 {
		cmd.Println("No messages found.")
		return
	}

	for i, m := range messages {
		s := domain.Summarise(m)
		marker := " "
		if !s.IsRead {
			marker = "*"
		}
		received := "-"
		if !s.ReceivedDateTime.IsZero() {
			received = s.ReceivedDateTime.Local().Format("2006-01-02 15:04")
		}
		subject := s.Subject
		if subject == "" {
			subject = "(no subject)"
		}

		cmd.Printf("%s[%d] %s  %-30s  %s\n", marker, i+1, received, truncate(s.Sender(), 30), subject)
		if s.ID != "" {
			cmd.Printf("     ID: %s\n", s.ID)
		}
	}
	cmd.Printf("\n%d message(s)\n", len(messages))
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
