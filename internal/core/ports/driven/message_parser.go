package driven

import (
	"io"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// MessageParser converts a serialised message into an OutboundMessage.
type MessageParser interface {
	// Parse reads a complete message. Headers that are absent leave the
	// corresponding recipient list nil.
	Parse(r io.Reader) (*domain.OutboundMessage, error)
}
