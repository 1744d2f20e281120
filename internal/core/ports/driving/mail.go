package driving

import (
	"context"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// MailService sends, lists and deletes mail for the configured sender.
type MailService interface {
	// Send validates msg and sends it from the configured sender.
	Send(ctx context.Context, msg *domain.OutboundMessage) error

	// ListMessages returns every message matching q across all pages.
	// Empty Mailbox and Folder default to the sender address and inbox.
	ListMessages(ctx context.Context, q domain.ListQuery) ([]domain.Message, error)

	// DeleteMessage deletes a message. An empty mailbox means the sender.
	DeleteMessage(ctx context.Context, mailbox, messageID string) error

	// GetMailFolder returns folder metadata. An empty mailbox means the sender.
	GetMailFolder(ctx context.Context, mailbox, folder string) (domain.MailFolder, error)

	// Sender returns the configured sender identity.
	Sender() domain.Sender
}

// AuthService checks that the configured credentials can obtain a token.
type AuthService interface {
	// Verify forces a token acquisition and returns a redacted description.
	Verify(ctx context.Context) (*domain.TokenInfo, error)
}
