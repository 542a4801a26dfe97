// Package driving defines interfaces that external actors (HTTP, MCP, CLI) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Every tenant-scoped operation takes a resolved domain.Tenant; transports
// build it once with domain.TenantFromIdentity.
//
// Implementations of these interfaces live in internal/core/services.
package driving
