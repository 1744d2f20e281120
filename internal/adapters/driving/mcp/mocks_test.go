package mcp

import (
	"context"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// mockMailService records the last call of each kind.
type mockMailService struct {
	sender domain.Sender

	sent     *domain.OutboundMessage
	query    domain.ListQuery
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
	m.query = q
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
	return m.sender
}

type mockAuthService struct {
	info *domain.TokenInfo
	err  error
}

func (m *mockAuthService) Verify(_ context.Context) (*domain.TokenInfo, error) {
	return m.info, m.err
}
