package mcp

import (
	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Mail sends, lists and deletes messages.
	Mail driving.MailService

	// Auth verifies credentials. Optional; the check_auth tool is omitted without it.
	Auth driving.AuthService

	// Config is exposed, without the secret, as a resource. Optional.
	Config *domain.ClientConfig
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Mail == nil {
		return ErrMissingMailService
	}
	return nil
}
