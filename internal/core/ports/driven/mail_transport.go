package driven

import (
	"context"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// MailTransport performs mail operations against the remote API.
// Every call is wrapped in the token freshness check and the rate-limit retry loop.
type MailTransport interface {
	// SendMail sends msg from sender. Returns nil on any 2xx response.
	SendMail(ctx context.Context, sender domain.Sender, msg *domain.OutboundMessage) error

	// ListMessages follows continuation links and returns every message in order.
	// Filter and Search together are rejected before any request is made.
	ListMessages(ctx context.Context, q domain.ListQuery) ([]domain.Message, error)

	// DeleteMessage deletes one message. A missing message is an error.
	DeleteMessage(ctx context.Context, mailbox, messageID string) error

	// GetMailFolder returns the folder record for a well-known name or folder id.
	GetMailFolder(ctx context.Context, mailbox, folder string) (domain.MailFolder, error)
}
