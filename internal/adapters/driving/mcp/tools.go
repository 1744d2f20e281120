package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// AttachmentInput is one attachment on send_mail.
// Exactly one of Path or ContentBase64 must be set.
type AttachmentInput struct {
	Path          string `json:"path,omitempty" jsonschema:"file path readable by the server"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"base64 encoded file content"`
	Name          string `json:"name,omitempty" jsonschema:"file name, required with content_base64"`
	ContentType   string `json:"content_type,omitempty" jsonschema:"MIME type, required with content_base64"`
}

// SendMailInput is the input schema for the send_mail tool.
type SendMailInput struct {
	To          []string          `json:"to" jsonschema:"recipient addresses"`
	CC          []string          `json:"cc,omitempty" jsonschema:"cc addresses; an empty list is sent as empty"`
	BCC         []string          `json:"bcc,omitempty" jsonschema:"bcc addresses; an empty list is sent as empty"`
	Subject     string            `json:"subject,omitempty" jsonschema:"message subject"`
	Body        string            `json:"body,omitempty" jsonschema:"message body"`
	HTML        bool              `json:"html,omitempty" jsonschema:"treat the body as HTML"`
	Importance  string            `json:"importance,omitempty" jsonschema:"low, normal or high (default low)"`
	SaveToSent  *bool             `json:"save_to_sent,omitempty" jsonschema:"save a copy to Sent Items (default true)"`
	Attachments []AttachmentInput `json:"attachments,omitempty" jsonschema:"file attachments"`
}

// SendMailOutput is the output schema for the send_mail tool.
type SendMailOutput struct {
	Sent       bool `json:"sent"`
	Recipients int  `json:"recipients"`
}

// ListMessagesInput is the input schema for the list_messages tool.
type ListMessagesInput struct {
	Mailbox      string   `json:"mailbox,omitempty" jsonschema:"mailbox to read (default: the sender)"`
	Folder       string   `json:"folder,omitempty" jsonschema:"well-known folder name or folder id (default inbox)"`
	Filter       string   `json:"filter,omitempty" jsonschema:"OData $filter expression; cannot be combined with search"`
	Search       string   `json:"search,omitempty" jsonschema:"$search expression; cannot be combined with filter"`
	Select       []string `json:"select,omitempty" jsonschema:"properties to return"`
	Top          int      `json:"top,omitempty" jsonschema:"page size hint (default 10)"`
	IncludeCount *bool    `json:"include_count,omitempty" jsonschema:"request @odata.count (default true)"`
	Advanced     bool     `json:"advanced,omitempty" jsonschema:"send ConsistencyLevel: eventual"`
	MaxPages     int      `json:"max_pages,omitempty" jsonschema:"stop after this many pages (default: all)"`
}

// ListMessagesOutput is the output schema for the list_messages tool.
type ListMessagesOutput struct {
	Messages []map[string]any `json:"messages"`
	Count    int              `json:"count"`
}

// DeleteMessageInput is the input schema for the delete_message tool.
type DeleteMessageInput struct {
	MessageID string `json:"message_id" jsonschema:"id of the message to delete"`
	Mailbox   string `json:"mailbox,omitempty" jsonschema:"mailbox holding the message (default: the sender)"`
}

// DeleteMessageOutput is the output schema for the delete_message tool.
type DeleteMessageOutput struct {
	Deleted   bool   `json:"deleted"`
	MessageID string `json:"message_id"`
}

// GetMailFolderInput is the input schema for the get_mail_folder tool.
type GetMailFolderInput struct {
	Mailbox string `json:"mailbox,omitempty" jsonschema:"mailbox to read (default: the sender)"`
	Folder  string `json:"folder,omitempty" jsonschema:"well-known folder name or folder id (default inbox)"`
}

// GetMailFolderOutput is the output schema for the get_mail_folder tool.
type GetMailFolderOutput struct {
	Folder map[string]any `json:"folder"`
}

// CheckAuthInput is the (empty) input schema for the check_auth tool.
type CheckAuthInput struct{}

// CheckAuthOutput is the output schema for the check_auth tool.
type CheckAuthOutput struct {
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	MaskedToken string `json:"masked_token"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_mail",
		Description: "Send an email from the configured sender mailbox",
	}, s.handleSendMail)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_messages",
		Description: "List messages in a mail folder, following every page",
	}, s.handleListMessages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_message",
		Description: "Delete a message by id",
	}, s.handleDeleteMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_mail_folder",
		Description: "Get metadata for a mail folder",
	}, s.handleGetMailFolder)

	if s.ports.Auth != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "check_auth",
			Description: "Verify the application credentials by requesting a token",
		}, s.handleCheckAuth)
	}
}

func (s *Server) handleSendMail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendMailInput,
) (*mcp.CallToolResult, SendMailOutput, error) {
	importance, err := domain.ParseImportance(input.Importance)
	if err != nil {
		return nil, SendMailOutput{}, err
	}

	msg := &domain.OutboundMessage{
		Subject:    input.Subject,
		Body:       input.Body,
		BodyType:   domain.BodyText,
		To:         input.To,
		CC:         input.CC,
		BCC:        input.BCC,
		Importance: importance,
		SaveToSent: input.SaveToSent,
	}
	if input.HTML {
		msg.BodyType = domain.BodyHTML
	}

	for i, a := range input.Attachments {
		att, err := toAttachment(a)
		if err != nil {
			return nil, SendMailOutput{}, fmt.Errorf("attachment %d: %w", i, err)
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	if err := s.ports.Mail.Send(ctx, msg); err != nil {
		return nil, SendMailOutput{}, err
	}

	return nil, SendMailOutput{Sent: true, Recipients: len(msg.To)}, nil
}

func toAttachment(a AttachmentInput) (*domain.Attachment, error) {
	spec := domain.AttachmentSpec{
		Path:        a.Path,
		Name:        a.Name,
		ContentType: a.ContentType,
	}
	if a.ContentBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(a.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: content_base64: %w", domain.ErrInvalidInput, err)
		}
		spec.Data = data
	}
	return domain.NewAttachment(spec)
}

func (s *Server) handleListMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListMessagesInput,
) (*mcp.CallToolResult, ListMessagesOutput, error) {
	q := domain.ListQuery{
		Mailbox:       input.Mailbox,
		Folder:        input.Folder,
		Filter:        input.Filter,
		Search:        input.Search,
		Select:        input.Select,
		PageSize:      input.Top,
		IncludeCount:  input.IncludeCount,
		AdvancedQuery: input.Advanced,
		MaxPages:      input.MaxPages,
	}

	messages, err := s.ports.Mail.ListMessages(ctx, q)
	if err != nil {
		return nil, ListMessagesOutput{}, err
	}

	output := ListMessagesOutput{
		Messages: make([]map[string]any, 0, len(messages)),
		Count:    len(messages),
	}
	for i, m := range messages {
		var record map[string]any
		if err := json.Unmarshal(m, &record); err != nil {
			return nil, ListMessagesOutput{}, fmt.Errorf("decoding message %d: %w", i, err)
		}
		output.Messages = append(output.Messages, record)
	}

	return nil, output, nil
}

func (s *Server) handleDeleteMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteMessageInput,
) (*mcp.CallToolResult, DeleteMessageOutput, error) {
	if err := s.ports.Mail.DeleteMessage(ctx, input.Mailbox, input.MessageID); err != nil {
		return nil, DeleteMessageOutput{}, err
	}
	return nil, DeleteMessageOutput{Deleted: true, MessageID: input.MessageID}, nil
}

func (s *Server) handleGetMailFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetMailFolderInput,
) (*mcp.CallToolResult, GetMailFolderOutput, error) {
	folder, err := s.ports.Mail.GetMailFolder(ctx, input.Mailbox, input.Folder)
	if err != nil {
		return nil, GetMailFolderOutput{}, err
	}

	var record map[string]any
	if err := json.Unmarshal(folder, &record); err != nil {
		return nil, GetMailFolderOutput{}, fmt.Errorf("decoding folder: %w", err)
	}
	return nil, GetMailFolderOutput{Folder: record}, nil
}

func (s *Server) handleCheckAuth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CheckAuthInput,
) (*mcp.CallToolResult, CheckAuthOutput, error) {
	info, err := s.ports.Auth.Verify(ctx)
	if err != nil {
		return nil, CheckAuthOutput{}, err
	}
	return nil, CheckAuthOutput{
		TokenType:   info.TokenType,
		ExpiresAt:   info.ExpiresAt.UTC().Format(time.RFC3339),
		MaskedToken: info.MaskedToken,
	}, nil
}
