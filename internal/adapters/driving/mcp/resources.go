package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for graphmail resources.
const uriScheme = "graphmail://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "config",
		Name:        "config",
		Description: "Sender identity and client settings (the client secret is never included)",
		MIMEType:    "application/json",
	}, s.handleConfigResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "mailboxes/{mailbox}/folders/{folder}",
		Name:        "mail-folder",
		Description: "Metadata for a mail folder",
		MIMEType:    "application/json",
	}, s.handleFolderResource)
}

// configInfo is the public view of the client configuration.
type configInfo struct {
	SenderName    string   `json:"sender_name"`
	SenderAddress string   `json:"sender_address"`
	TenantID      string   `json:"tenant_id,omitempty"`
	ClientID      string   `json:"client_id,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`
	MaxRetries    int      `json:"max_retries,omitempty"`
	GraphBaseURL  string   `json:"graph_base_url,omitempty"`
}

func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sender := s.ports.Mail.Sender()
	info := configInfo{
		SenderName:    sender.Name,
		SenderAddress: sender.Address,
	}
	if cfg := s.ports.Config; cfg != nil {
		info.TenantID = cfg.TenantID
		info.ClientID = cfg.ClientID
		info.Scopes = cfg.Scopes
		info.MaxRetries = cfg.MaxRetries
		info.GraphBaseURL = cfg.GraphBaseURL
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleFolderResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	mailbox, folder, ok := extractFolder(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Mail.GetMailFolder(ctx, mailbox, folder)
	if err != nil {
		return nil, fmt.Errorf("getting mail folder: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(record),
		}},
	}, nil
}

// extractFolder parses graphmail://mailboxes/{mailbox}/folders/{folder}.
func extractFolder(uri string) (mailbox, folder string, ok bool) {
	const prefix = uriScheme + "mailboxes/"

	rest, found := strings.CutPrefix(uri, prefix)
	if !found {
		return "", "", false
	}
	mailbox, folder, found = strings.Cut(rest, "/folders/")
	if !found || mailbox == "" || folder == "" || strings.Contains(folder, "/") {
		return "", "", false
	}

	mailbox, err := url.PathUnescape(mailbox)
	if err != nil {
		return "", "", false
	}
	folder, err = url.PathUnescape(folder)
	if err != nil {
		return "", "", false
	}
	return mailbox, folder, true
}
