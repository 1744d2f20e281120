package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
	"github.com/custodia-labs/graphmail/internal/core/ports/driving"
)

// Ensure MailService implements the interface.
var _ driving.MailService = (*MailService)(nil)

// MailService validates mail requests, fills in defaults and hands them to a transport.
type MailService struct {
	transport driven.MailTransport
	sender    domain.Sender
	logger    *slog.Logger
}

// NewMailService creates a mail service sending as sender.
// A nil logger discards output.
func NewMailService(transport driven.MailTransport, sender domain.Sender, logger *slog.Logger) *MailService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MailService{
		transport: transport,
		sender:    sender,
		logger:    logger,
	}
}

// Sender returns the configured sender identity.
func (s *MailService) Sender() domain.Sender {
	return s.sender
}

// Send validates msg and sends it from the configured sender.
func (s *MailService) Send(ctx context.Context, msg *domain.OutboundMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	err := s.transport.SendMail(ctx, s.sender, msg)
	s.log("send_mail", s.sender.Address, err, "recipients", len(msg.To))
	return err
}

// ListMessages returns every message matching q.
func (s *MailService) ListMessages(ctx context.Context, q domain.ListQuery) ([]domain.Message, error) {
	if q.Filter != "" && q.Search != "" {
		return nil, fmt.Errorf("%w: filter and search cannot be used together", domain.ErrInvalidInput)
	}
	if q.PageSize < 0 || q.MaxPages < 0 {
		return nil, fmt.Errorf("%w: page size and page limit must not be negative", domain.ErrInvalidInput)
	}

	q.Mailbox = s.mailbox(q.Mailbox)
	if q.Folder == "" {
		q.Folder = domain.DefaultFolder
	}
	if q.PageSize == 0 {
		q.PageSize = domain.DefaultPageSize
	}

	messages, err := s.transport.ListMessages(ctx, q)
	s.log("list_messages", q.Mailbox, err, "folder", q.Folder, "count", len(messages))
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteMessage deletes one message. An empty mailbox means the sender.
func (s *MailService) DeleteMessage(ctx context.Context, mailbox, messageID string) error {
	if strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("%w: message id is required", domain.ErrInvalidInput)
	}

	mailbox = s.mailbox(mailbox)
	err := s.transport.DeleteMessage(ctx, mailbox, messageID)
	s.log("delete_message", mailbox, err, "message_id", messageID)
	return err
}

// GetMailFolder returns folder metadata. Empty values mean the sender's inbox.
func (s *MailService) GetMailFolder(ctx context.Context, mailbox, folder string) (domain.MailFolder, error) {
	mailbox = s.mailbox(mailbox)
	if strings.TrimSpace(folder) == "" {
		folder = domain.DefaultFolder
	}

	out, err := s.transport.GetMailFolder(ctx, mailbox, folder)
	s.log("get_mail_folder", mailbox, err, "folder", folder)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MailService) mailbox(m string) string {
	if strings.TrimSpace(m) == "" {
		return s.sender.Address
	}
	return m
}

func (s *MailService) log(op, mailbox string, err error, attrs ...any) {
	attrs = append([]any{"operation", op, "mailbox", mailbox}, attrs...)
	if err != nil {
		s.logger.Warn("mail operation failed", append(attrs, "status", "failed", "error", err)...)
		return
	}
	s.logger.Debug("mail operation done", append(attrs, "status", "ok")...)
}
