package services

import (
	"context"
	"time"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// mockTransport implements driven.MailTransport and records the last call.
type mockTransport struct {
	sendErr   error
	listErr   error
	deleteErr error
	folderErr error

	messages []domain.Message
	folder   domain.MailFolder

	sentFrom  domain.Sender
	sent      *domain.OutboundMessage
	query     domain.ListQuery
	mailbox   string
	messageID string
	folderArg string
	calls     int
}

var _ driven.MailTransport = (*mockTransport)(nil)

func (m *mockTransport) SendMail(_ context.Context, sender domain.Sender, msg *domain.OutboundMessage) error {
	m.calls++
	m.sentFrom = sender
	m.sent = msg
	return m.sendErr
}

func (m *mockTransport) ListMessages(_ context.Context, q domain.ListQuery) ([]domain.Message, error) {
	m.calls++
	m.query = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.messages, nil
}

func (m *mockTransport) DeleteMessage(_ context.Context, mailbox, messageID string) error {
	m.calls++
	m.mailbox = mailbox
	m.messageID = messageID
	return m.deleteErr
}

func (m *mockTransport) GetMailFolder(_ context.Context, mailbox, folder string) (domain.MailFolder, error) {
	m.calls++
	m.mailbox = mailbox
	m.folderArg = folder
	if m.folderErr != nil {
		return nil, m.folderErr
	}
	return m.folder, nil
}

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token    *domain.Token
	err      error
	acquired int
}

var _ driven.TokenProvider = (*mockTokenProvider)(nil)

func (p *mockTokenProvider) Acquire(_ context.Context) (*domain.Token, error) {
	p.acquired++
	return p.token, p.err
}

func (p *mockTokenProvider) IsStale(_ time.Duration) bool { return p.token == nil }

func (p *mockTokenProvider) EnsureFresh(_ context.Context) error { return p.err }

func (p *mockTokenProvider) AccessToken(_ context.Context) (*domain.Token, error) {
	return p.token, p.err
}
