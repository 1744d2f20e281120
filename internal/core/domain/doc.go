// Package domain defines the core business entities for graphmail.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ClientConfig: Tenant, application and sender settings
//   - Token: An access token with its absolute expiry
//   - OutboundMessage: A message to be sent through Graph
//   - Attachment: A named, typed, base64-encoded file
//   - ListQuery: Parameters for a paginated message listing
//   - Message / MailFolder: Opaque records returned by Graph
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
