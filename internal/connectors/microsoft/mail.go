package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// Ensure MailClient implements the MailTransport interface.
var _ driven.MailTransport = (*MailClient)(nil)

// MailClient builds Graph mail requests and runs them through a Client.
type MailClient struct {
	client      *Client
	logger      *slog.Logger
	logPayloads bool
}

// MailOption configures a MailClient.
type MailOption func(*MailClient)

// WithPayloadLogging logs outbound JSON bodies at debug level.
func WithPayloadLogging(enabled bool) MailOption {
	return func(m *MailClient) { m.logPayloads = enabled }
}

// NewMailClient creates a mail client on top of an executor.
func NewMailClient(client *Client, opts ...MailOption) *MailClient {
	m := &MailClient{
		client: client,
		logger: client.logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendMail sends msg from sender.
func (m *MailClient) SendMail(ctx context.Context, sender domain.Sender, msg *domain.OutboundMessage) error {
	payload, err := buildSendMailRequest(sender, msg)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	log := m.logger.With("operation", "send_mail", "mailbox", sender.Address)
	if m.logPayloads {
		log.Debug("send mail payload", "payload", redactedPayload(payload))
	}

	req := request{
		method: http.MethodPost,
		url:    m.client.url("users", sender.Address, "sendMail"),
		body:   data,
	}

	err = m.client.Execute(ctx, "send_mail", func(ctx context.Context) error {
		_, err := m.client.do(ctx, req)
		return err
	})
	if err != nil {
		log.Error("send mail failed", "recipients", msg.To, "error", err)
		return WrapError(err)
	}

	log.Info("sent mail", "recipients", msg.To, "attachments", len(msg.Attachments))
	return nil
}

// DeleteMessage deletes one message from mailbox.
func (m *MailClient) DeleteMessage(ctx context.Context, mailbox, messageID string) error {
	log := m.logger.With("operation", "delete_message", "mailbox", mailbox, "message_id", messageID)
	req := request{
		method: http.MethodDelete,
		url:    m.client.url("users", mailbox, "messages", messageID),
	}

	err := m.client.Execute(ctx, "delete_message", func(ctx context.Context) error {
		_, err := m.client.do(ctx, req)
		return err
	})
	if err != nil {
		switch {
		case IsBadRequest(err):
			log.Error("bad request deleting message", "status", http.StatusBadRequest, "error", err)
		case IsUnauthorized(err):
			log.Error("unauthorised deleting message, check the application has Mail.ReadWrite",
				"status", http.StatusUnauthorized)
		case IsNotFound(err):
			log.Error("message not found, check the message id", "status", http.StatusNotFound)
		default:
			log.Error("delete message failed", "error", err)
		}
		return WrapError(err)
	}

	log.Info("deleted message")
	return nil
}

// GetMailFolder returns the folder record for a well-known name or folder id.
func (m *MailClient) GetMailFolder(ctx context.Context, mailbox, folder string) (domain.MailFolder, error) {
	log := m.logger.With("operation", "get_mail_folder", "mailbox", mailbox, "folder", folder)
	req := request{
		method: http.MethodGet,
		url:    m.client.url("users", mailbox, "mailFolders", folder),
	}

	var out domain.MailFolder
	err := m.client.Execute(ctx, "get_mail_folder", func(ctx context.Context) error {
		data, err := m.client.do(ctx, req)
		if err != nil {
			return err
		}
		out = domain.MailFolder(data)
		return nil
	})
	if err != nil {
		if IsUnauthorized(err) {
			log.Error("unauthorised reading mail folder, check the application has Mail.ReadWrite",
				"status", http.StatusUnauthorized)
		} else {
			log.Error("get mail folder failed", "error", err)
		}
		return nil, WrapError(err)
	}

	return out, nil
}
