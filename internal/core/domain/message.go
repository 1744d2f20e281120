package domain

import (
	"fmt"
	"strings"
)

// BodyType is the content type of a message body.
type BodyType string

const (
	// BodyText is a plain-text body.
	BodyText BodyType = "text"
	// BodyHTML is an HTML body.
	BodyHTML BodyType = "html"
)

// ParseBodyType converts a string to a BodyType. Empty means text.
func ParseBodyType(s string) (BodyType, error) {
	switch BodyType(strings.ToLower(strings.TrimSpace(s))) {
	case "", BodyText:
		return BodyText, nil
	case BodyHTML:
		return BodyHTML, nil
	default:
		return "", fmt.Errorf("%w: unknown body type %q", ErrInvalidInput, s)
	}
}

// Importance is the importance flag on an outbound message.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// ParseImportance converts a string to an Importance. Empty means low.
func ParseImportance(s string) (Importance, error) {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportanceLow:
		return ImportanceLow, nil
	case ImportanceNormal:
		return ImportanceNormal, nil
	case ImportanceHigh:
		return ImportanceHigh, nil
	default:
		return "", fmt.Errorf("%w: unknown importance %q", ErrInvalidInput, s)
	}
}

// OutboundMessage is a message to send. It is built fresh for every call.
type OutboundMessage struct {
	Subject  string
	Body     string
	BodyType BodyType

	// To holds one or more recipient addresses, in order.
	To []string
	// CC is omitted from the request when nil. A non-nil empty slice is sent as an empty list.
	CC []string
	// BCC follows the same nil/empty rule as CC.
	BCC []string

	Importance Importance
	// SaveToSent defaults to true when nil.
	SaveToSent *bool

	Attachments []*Attachment
}

// ShouldSaveToSent resolves the SaveToSent default.
func (m *OutboundMessage) ShouldSaveToSent() bool {
	if m.SaveToSent == nil {
		return true
	}
	return *m.SaveToSent
}

// Validate checks recipients, enums and attachments.
func (m *OutboundMessage) Validate() error {
	if m == nil {
		return ErrInvalidInput
	}
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidInput)
	}
	lists := []struct {
		name  string
		addrs []string
	}{
		{"to", m.To},
		{"cc", m.CC},
		{"bcc", m.BCC},
	}
	for _, l := range lists {
		for i, addr := range l.addrs {
			if strings.TrimSpace(addr) == "" {
				return fmt.Errorf("%w: %s recipient %d is empty", ErrInvalidInput, l.name, i)
			}
		}
	}

	if _, err := ParseBodyType(string(m.BodyType)); err != nil {
		return err
	}
	if _, err := ParseImportance(string(m.Importance)); err != nil {
		return err
	}

	for i, a := range m.Attachments {
		if a == nil {
			return fmt.Errorf("%w: attachment %d is nil", ErrInvalidInput, i)
		}
	}
	return nil
}
