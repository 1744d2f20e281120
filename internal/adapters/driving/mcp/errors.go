// Package mcp provides an MCP (Model Context Protocol) server adapter for graphmail.
// It lets AI assistants send, list and delete mail as the configured sender.
package mcp

import "errors"

// ErrMissingMailService is returned when the mail service is not provided.
var ErrMissingMailService = errors.New("mcp: mail service is required")
