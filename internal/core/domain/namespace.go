package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNamespaceLength bounds namespace identifiers.
const MaxNamespaceLength = 128

// Namespace is an opaque tenant identifier. Every entry, chunk and query is
// scoped to exactly one namespace.
type Namespace string

// String returns the namespace as a plain string.
func (n Namespace) String() string {
	return string(n)
}

// Validate checks the namespace can be used as a storage key.
func (n Namespace) Validate() error {
	if n == "" {
		return fmt.Errorf("%w: namespace is empty", ErrInvalidInput)
	}
	if len(n) > MaxNamespaceLength {
		return fmt.Errorf("%w: namespace longer than %d bytes", ErrInvalidInput, MaxNamespaceLength)
	}
	if strings.ContainsRune(string(n), '/') {
		return fmt.Errorf("%w: namespace contains '/'", ErrInvalidInput)
	}
	for _, r := range n {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: namespace contains control characters", ErrInvalidInput)
		}
	}
	return nil
}

// Identity is what the request boundary knows about the caller.
// OrgID is the organisation claim that becomes the namespace.
type Identity struct {
	Subject string
	OrgID   string
}

// Tenant is the resolved caller context handed to services.
type Tenant struct {
	Namespace Namespace
	Subject   string
}

// TenantFromIdentity resolves the caller's namespace.
// It fails with ErrUnauthorized when there is no identity or no org claim.
func TenantFromIdentity(id *Identity) (Tenant, error) {
	if id == nil {
		return Tenant{}, fmt.Errorf("%w: no identity", ErrUnauthorized)
	}
	org := strings.TrimSpace(id.OrgID)
	if org == "" {
		return Tenant{}, fmt.Errorf("%w: identity has no organisation", ErrUnauthorized)
	}
	ns := Namespace(org)
	if err := ns.Validate(); err != nil {
		return Tenant{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return Tenant{Namespace: ns, Subject: id.Subject}, nil
}

// Resolved reports whether the tenant carries a namespace.
func (t Tenant) Resolved() bool {
	return t.Namespace != ""
}
