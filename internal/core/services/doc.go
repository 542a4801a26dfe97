// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services receive a resolved domain.Tenant and never read or write
// outside its namespace.
package services
