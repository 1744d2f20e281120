package cli

import (
	"bytes"
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
	"github.com/custodia-labs/graphmail/internal/core/ports/driving"
)

type mockMailService struct {
	sent     *domain.OutboundMessage
	query    *domain.ListQuery
	messages []domain.Message
	folder   domain.MailFolder

	deletedMailbox string
	deletedID      string
	folderMailbox  string
	folderName     string

	err error
}

func (m *mockMailService) Send(_ context.Context, msg *domain.OutboundMessage) error {
	m.sent = msg
	return m.err
}

func (m *mockMailService) ListMessages(_ context.Context, q domain.ListQuery) ([]domain.Message, error) {
	m.query = &q
	if m.err != nil {
		return nil, m.err
	}
	return m.messages, nil
}

func (m *mockMailService) DeleteMessage(_ context.Context, mailbox, messageID string) error {
	m.deletedMailbox = mailbox
	m.deletedID = messageID
	return m.err
}

func (m *mockMailService) GetMailFolder(_ context.Context, mailbox, folder string) (domain.MailFolder, error) {
	m.folderMailbox = mailbox
	m.folderName = folder
	if m.err != nil {
		return nil, m.err
	}
	return m.folder, nil
}

func (m *mockMailService) Sender() domain.Sender {
	return domain.Sender{Name: "Test", Address: "sender@example.com"}
}

type mockAuthService struct {
	info *domain.TokenInfo
	err  error
}

func (m *mockAuthService) Verify(_ context.Context) (*domain.TokenInfo, error) {
	return m.info, m.err
}

// setupTestServices installs mock services and returns a cleanup func
// restoring the previous ones.
func setupTestServices() (*mockMailService, *mockAuthService, func()) {
	origMail := mailService
	origAuth := authService
	origStore := configStore
	origConfig := clientConfig

	mail := &mockMailService{}
	auth := &mockAuthService{}
	mailService = mail
	authService = auth

	return mail, auth, func() {
		mailService = origMail
		authService = origAuth
		configStore = origStore
		clientConfig = origConfig
	}
}

// useConfigStore swaps the config store for the duration of a test.
func useConfigStore(store driven.ConfigStore) func() {
	orig := configStore
	configStore = store
	return func() { configStore = orig }
}

// executeCommand runs rootCmd with fresh flag values and returns its output.
func executeCommand(in io.Reader, args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var (
	_ driving.MailService = (*mockMailService)(nil)
	_ driving.AuthService = (*mockAuthService)(nil)
)
