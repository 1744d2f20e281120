// Package eml turns RFC 822 files into outbound messages.
package eml

import (
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset" // non-UTF-8 part decoding
	"github.com/emersion/go-message/mail"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.MessageParser = (*Parser)(nil)

// defaultAttachmentType is used when an attachment part has no Content-Type.
const defaultAttachmentType = "application/octet-stream"

// Parser reads .eml files.
type Parser struct{}

// New creates a new EML parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads one message. Sender headers are ignored; mail always goes out
// as the configured sender.
func (p *Parser) Parse(r io.Reader) (*domain.OutboundMessage, error) {
	reader, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read message: %v", domain.ErrInvalidInput, err)
	}
	defer reader.Close()

	msg := &domain.OutboundMessage{}

	if subject, err := reader.Header.Subject(); err == nil {
		msg.Subject = subject
	}

	if msg.To, err = addresses(reader.Header, "To"); err != nil {
		return nil, err
	}
	if msg.CC, err = addresses(reader.Header, "Cc"); err != nil {
		return nil, err
	}
	if msg.BCC, err = addresses(reader.Header, "Bcc"); err != nil {
		return nil, err
	}
	msg.Importance = importance(reader.Header)

	var text []string
	var html string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read part: %v", domain.ErrInvalidInput, err)
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			mediaType, _, _ := header.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
			}
			switch {
			case strings.HasPrefix(mediaType, "text/html"):
				if html == "" {
					html = string(body)
				}
			case strings.HasPrefix(mediaType, "text/plain") || mediaType == "":
				text = append(text, string(body))
			}
		case *mail.AttachmentHeader:
			att, err := attachment(header, part.Body)
			if err != nil {
				return nil, err
			}
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	if html != "" {
		msg.Body = html
		msg.BodyType = domain.BodyHTML
	} else {
		msg.Body = strings.Join(text, "\n")
		msg.BodyType = domain.BodyText
	}

	return msg, nil
}

// addresses returns nil when the header is absent and an empty list when it
// is present but blank.
func addresses(h mail.Header, key string) ([]string, error) {
	if !h.Has(key) {
		return nil, nil
	}
	list, err := h.AddressList(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", domain.ErrInvalidInput, key, err)
	}
	out := make([]string, 0, len(list))
	for _, addr := range list {
		out = append(out, addr.Address)
	}
	return out, nil
}

// importance reads Importance, then X-Priority (1-2 high, 3 normal, 4-5 low).
func importance(h mail.Header) domain.Importance {
	if raw := strings.TrimSpace(h.Get("Importance")); raw != "" {
		if v, err := domain.ParseImportance(raw); err == nil {
			return v
		}
	}

	priority := strings.TrimSpace(h.Get("X-Priority"))
	if priority == "" {
		return ""
	}
	switch priority[0] {
	case '1', '2':
		return domain.ImportanceHigh
	case '3':
		return domain.ImportanceNormal
	case '4', '5':
		return domain.ImportanceLow
	default:
		return ""
	}
}

func attachment(h *mail.AttachmentHeader, body io.Reader) (*domain.Attachment, error) {
	name, _ := h.Filename()
	if strings.TrimSpace(name) == "" {
		name = "attachment"
	}
	contentType, _, _ := h.ContentType()
	if contentType == "" {
		contentType = defaultAttachmentType
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read attachment %s: %v", domain.ErrInvalidInput, name, err)
	}
	return domain.NewAttachmentFromBytes(data, name, contentType)
}
