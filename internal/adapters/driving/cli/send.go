package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/logger"
)

var (
	sendTo         []string
	sendCC         []string
	sendBCC        []string
	sendSubject    string
	sendBody       string
	sendBodyFile   string
	sendEML        string
	sendHTML       bool
	sendImportance string
	sendNoSave     bool
	sendAttach     []string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message from the configured sender",
	Long: `Send a message from the configured sender mailbox.

The body comes from --body, --body-file or an RFC 822 file given with --eml.
Flags override the headers read from --eml. Attachments are read from disk
and their content type is guessed from the file extension.

Examples:
  graphmail send --to alice@example.com --subject "Report" --body-file report.txt
  graphmail send --to bob@example.com --cc "" --html --body "<p>Hi</p>"
  graphmail send --eml draft.eml --attach invoice.pdf`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringSliceVar(&sendTo, "to", nil, "recipient addresses")
	sendCmd.Flags().StringSliceVar(&sendCC, "cc", nil, "cc addresses (pass \"\" to send an empty list)")
	sendCmd.Flags().StringSliceVar(&sendBCC, "bcc", nil, "bcc addresses (pass \"\" to send an empty list)")
	sendCmd.Flags().StringVarP(&sendSubject, "subject", "s", "", "message subject")
	sendCmd.Flags().StringVarP(&sendBody, "body", "b", "", "message body")
	sendCmd.Flags().StringVar(&sendBodyFile, "body-file", "", "read the body from a file")
	sendCmd.Flags().StringVar(&sendEML, "eml", "", "read the message from an RFC 822 file")
	sendCmd.Flags().BoolVar(&sendHTML, "html", false, "treat the body as HTML")
	sendCmd.Flags().StringVar(&sendImportance, "importance", "", "low, normal or high (default low)")
	sendCmd.Flags().BoolVar(&sendNoSave, "no-save", false, "do not save a copy to Sent Items")
	sendCmd.Flags().StringArrayVarP(&sendAttach, "attach", "a", nil, "attach a file (repeatable)")
	sendCmd.MarkFlagsMutuallyExclusive("body", "body-file")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	svc, err := requireMailService()
	if err != nil {
		return err
	}

	logger.Section("Building message")
	msg, err := buildOutboundMessage(cmd)
	if err != nil {
		return err
	}
	logger.Debug("to=%v cc=%v bcc=%v attachments=%d", msg.To, msg.CC, msg.BCC, len(msg.Attachments))
	if strings.TrimSpace(msg.Subject) == "" {
		logger.Warn("sending without a subject")
	}

	logger.Section("Sending")
	if err := svc.Send(cmd.Context(), msg); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	cmd.Printf("Message sent to %s\n", strings.Join(msg.To, ", "))
	return nil
}

// buildOutboundMessage merges the --eml file, if any, with the flags.
func buildOutboundMessage(cmd *cobra.Command) (*domain.OutboundMessage, error) {
	msg := &domain.OutboundMessage{}
	if sendEML != "" {
		f, err := os.Open(sendEML)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", sendEML, err)
		}
		defer f.Close()

		msg, err = messageParser.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", sendEML, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("to") {
		msg.To = sendTo
	}
	if flags.Changed("cc") {
		msg.CC = nonNil(sendCC)
	}
	if flags.Changed("bcc") {
		msg.BCC = nonNil(sendBCC)
	}
	if flags.Changed("subject") {
		msg.Subject = sendSubject
	}

	switch {
	case flags.Changed("body"):
		msg.Body = sendBody
	case sendBodyFile != "":
		data, err := os.ReadFile(sendBodyFile)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		msg.Body = string(data)
	}
	if sendHTML {
		msg.BodyType = domain.BodyHTML
	}

	if flags.Changed("importance") {
		importance, err := domain.ParseImportance(sendImportance)
		if err != nil {
			return nil, err
		}
		msg.Importance = importance
	}
	if sendNoSave {
		save := false
		msg.SaveToSent = &save
	}

	for i, path := range sendAttach {
		a, err := domain.NewAttachmentFromPath(path, domain.AttachmentOptions{})
		if err != nil {
			return nil, fmt.Errorf("attachment %d (%s): %w", i, path, err)
		}
		msg.Attachments = append(msg.Attachments, a)
	}

	return msg, nil
}

// nonNil keeps an explicitly empty recipient flag distinct from an absent one.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
