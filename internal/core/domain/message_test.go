package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBodyType(t *testing.T) {
	tests := []struct {
		in      string
		want    BodyType
		wantErr bool
	}{
		{"", BodyText, false},
		{"text", BodyText, false},
		{"HTML", BodyHTML, false},
		{" html ", BodyHTML, false},
		{"markdown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBodyType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImportance(t *testing.T) {
	tests := []struct {
		in      string
		want    Importance
		wantErr bool
	}{
		{"", ImportanceLow, false},
		{"low", ImportanceLow, false},
		{"Normal", ImportanceNormal, false},
		{"high", ImportanceHigh, false},
		{"urgent", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImportance(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutboundMessage_ShouldSaveToSent(t *testing.T) {
	no := false
	yes := true

	assert.True(t, (&OutboundMessage{}).ShouldSaveToSent())
	assert.True(t, (&OutboundMessage{SaveToSent: &yes}).ShouldSaveToSent())
	assert.False(t, (&OutboundMessage{SaveToSent: &no}).ShouldSaveToSent())
}

func TestOutboundMessage_Validate(t *testing.T) {
	valid := func() *OutboundMessage {
		return &OutboundMessage{
			Subject: "Status",
			Body:    "All green",
			To:      []string{"a@example.com"},
		}
	}

	t.Run("valid minimal message", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty cc list is valid", func(t *testing.T) {
		m := valid()
		m.CC = []string{}
		assert.NoError(t, m.Validate())
	})

	tests := []struct {
		name   string
		mutate func(m *OutboundMessage)
		want   string
	}{
		{"no recipients", func(m *OutboundMessage) { m.To = nil }, "at least one recipient"},
		{"blank to", func(m *OutboundMessage) { m.To = []string{"a@example.com", " "} }, "to recipient 1"},
		{"blank bcc", func(m *OutboundMessage) { m.BCC = []string{""} }, "bcc recipient 0"},
		{"bad body type", func(m *OutboundMessage) { m.BodyType = "rtf" }, "body type"},
		{"bad importance", func(m *OutboundMessage) { m.Importance = "urgent" }, "importance"},
		{"nil attachment", func(m *OutboundMessage) { m.Attachments = []*Attachment{nil} }, "attachment 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)

			err := m.Validate()

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("nil message", func(t *testing.T) {
		var m *OutboundMessage
		assert.ErrorIs(t, m.Validate(), ErrInvalidInput)
	})
}

func TestListQuery_CountEnabledDefault(t *testing.T) {
	off := false
	assert.True(t, ListQuery{}.CountEnabled())
	assert.False(t, ListQuery{IncludeCount: &off}.CountEnabled())
}

func TestSummarise_Message(t *testing.T) {
	raw := Message(`{"id":"AAMk1","subject":"Hello","isRead":true,
		"receivedDateTime":"2025-01-27T09:14:11Z",
		"from":{"emailAddress":{"name":"Lando","address":"lando@example.com"}}}`)

	s := Summarise(raw)

	assert.Equal(t, "AAMk1", s.ID)
	assert.Equal(t, "Hello", s.Subject)
	assert.True(t, s.IsRead)
	assert.Equal(t, 2025, s.ReceivedDateTime.Year())
	assert.Equal(t, "lando@example.com", s.Sender())
}

func TestSummarise_PartialRecord(t *testing.T) {
	s := Summarise(Message(`{"id":"AAMk2","from":{"emailAddress":{"name":"Oscar"}}}`))

	assert.Equal(t, "AAMk2", s.ID)
	assert.Empty(t, s.Subject)
	assert.True(t, s.ReceivedDateTime.IsZero())
	assert.Equal(t, "Oscar", s.Sender())
}
