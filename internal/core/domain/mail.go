package domain

import (
	"encoding/json"
	"time"
)

// Default list parameters.
const (
	DefaultFolder   = "inbox"
	DefaultPageSize = 10
)

// ListQuery selects messages from a mail folder.
type ListQuery struct {
	// Mailbox is the user principal name to read from. Defaults to the sender address.
	Mailbox string
	// Folder is a well-known folder name or folder id. Defaults to inbox.
	Folder string

	// Filter is an OData $filter expression. Mutually exclusive with Search.
	Filter string
	// Search is a $search expression. Mutually exclusive with Filter.
	Search string
	// Select limits the returned properties.
	Select []string
	// PageSize is the $top hint. Defaults to 10.
	PageSize int
	// IncludeCount sets $count. Defaults to true.
	IncludeCount *bool
	// AdvancedQuery forces the ConsistencyLevel: eventual header.
	AdvancedQuery bool

	// MaxPages stops traversal after this many pages. Zero means no limit.
	MaxPages int
}

// CountEnabled resolves the IncludeCount default.
func (q ListQuery) CountEnabled() bool {
	if q.IncludeCount == nil {
		return true
	}
	return *q.IncludeCount
}

// Message is a message record exactly as Graph returned it.
type Message = json.RawMessage

// MailFolder is a mail folder record exactly as Graph returned it.
type MailFolder = json.RawMessage

// MessageSummary holds the few fields used for display.
// Decoding is best effort; missing fields stay empty.
type MessageSummary struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	IsRead           bool      `json:"isRead"`
	From             struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

// Summarise extracts display fields from a raw message.
func Summarise(m Message) MessageSummary {
	var s MessageSummary
	// Records trimmed by $select decode partially.
	_ = json.Unmarshal(m, &s)
	return s
}

// Sender returns the sender address, or the name if no address was selected.
func (s MessageSummary) Sender() string {
	if s.From.EmailAddress.Address != "" {
		return s.From.EmailAddress.Address
	}
	return s.From.EmailAddress.Name
}
