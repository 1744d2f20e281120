package microsoft

import (
	"encoding/json"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// fileAttachmentType is the OData type of an inline file attachment.
const fileAttachmentType = "#microsoft.graph.fileAttachment"

// sendMailRequest is the body of POST /users/{id}/sendMail.
type sendMailRequest struct {
	Message         message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems,omitempty"`
}

type message struct {
	Subject        string       `json:"subject"`
	Body           body         `json:"body"`
	ToRecipients   []recipient  `json:"toRecipients"`
	CCRecipients   *[]recipient `json:"ccRecipients,omitempty"`
	BCCRecipients  *[]recipient `json:"bccRecipients,omitempty"`
	Sender         recipient    `json:"sender"`
	Importance     string       `json:"importance"`
	HasAttachments bool         `json:"hasAttachments,omitempty"`
	Attachments    []attachment `json:"attachments,omitempty"`
}

type body struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type attachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

// buildSendMailRequest maps an outbound message onto the Graph payload.
// Body type and importance are sent in their canonical lower-case form.
func buildSendMailRequest(sender domain.Sender, msg *domain.OutboundMessage) (sendMailRequest, error) {
	bodyType, err := domain.ParseBodyType(string(msg.BodyType))
	if err != nil {
		return sendMailRequest{}, err
	}
	importance, err := domain.ParseImportance(string(msg.Importance))
	if err != nil {
		return sendMailRequest{}, err
	}

	m := message{
		Subject:      msg.Subject,
		Body:         body{ContentType: string(bodyType), Content: msg.Body},
		ToRecipients: recipients(msg.To),
		Sender: recipient{EmailAddress: emailAddress{
			Address: sender.Address,
			Name:    sender.Name,
		}},
		Importance: string(importance),
	}

	// Absent and empty lists mean different things to Graph.
	if msg.CC != nil {
		cc := recipients(msg.CC)
		m.CCRecipients = &cc
	}
	if msg.BCC != nil {
		bcc := recipients(msg.BCC)
		m.BCCRecipients = &bcc
	}

	if len(msg.Attachments) > 0 {
		m.HasAttachments = true
		m.Attachments = make([]attachment, 0, len(msg.Attachments))
		for _, a := range msg.Attachments {
			m.Attachments = append(m.Attachments, attachment{
				ODataType:    fileAttachmentType,
				Name:         a.Name,
				ContentType:  a.ContentType,
				ContentBytes: a.ContentBytes,
			})
		}
	}

	return sendMailRequest{
		Message:         m,
		SaveToSentItems: msg.ShouldSaveToSent(),
	}, nil
}

func recipients(addrs []string) []recipient {
	out := make([]recipient, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, recipient{EmailAddress: emailAddress{Address: addr}})
	}
	return out
}

// redactedPayload renders the payload for logs with attachment content removed.
func redactedPayload(req sendMailRequest) string {
	if len(req.Message.Attachments) > 0 {
		redacted := make([]attachment, len(req.Message.Attachments))
		for i, a := range req.Message.Attachments {
			a.ContentBytes = "<redacted>"
			redacted[i] = a
		}
		req.Message.Attachments = redacted
	}
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(data)
}

// listResponse is one page of a collection.
type listResponse struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink,omitempty"`
	Count    *int              `json:"@odata.count,omitempty"`
}
