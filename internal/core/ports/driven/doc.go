// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenProvider: Client-credentials access tokens (adapters/driven/oauth)
//   - MailTransport: Graph mail operations (connectors/microsoft)
//
// # Optional Interfaces
//
//   - ConfigStore: Persistent settings (adapters/driven/config/file)
//   - MessageParser: RFC 822 import for send (adapters/driven/eml)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
