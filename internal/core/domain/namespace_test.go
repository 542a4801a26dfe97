package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ns      Namespace
		wantErr bool
	}{
		{name: "simple", ns: "org_123"},
		{name: "unicode", ns: "société"},
		{name: "max length", ns: Namespace(strings.Repeat("a", MaxNamespaceLength))},
		{name: "empty", ns: "", wantErr: true},
		{name: "too long", ns: Namespace(strings.Repeat("a", MaxNamespaceLength+1)), wantErr: true},
		{name: "slash", ns: "a/b", wantErr: true},
		{name: "newline", ns: "a\nb", wantErr: true},
		{name: "nul", ns: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTenantFromIdentity(t *testing.T) {
	t.Run("nil identity", func(t *testing.T) {
		_, err := TenantFromIdentity(nil)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing org", func(t *testing.T) {
		_, err := TenantFromIdentity(&Identity{Subject: "user_1"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("blank org", func(t *testing.T) {
		_, err := TenantFromIdentity(&Identity{Subject: "user_1", OrgID: "   "})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("invalid org", func(t *testing.T) {
		_, err := TenantFromIdentity(&Identity{OrgID: "a/b"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("resolved", func(t *testing.T) {
		tenant, err := TenantFromIdentity(&Identity{Subject: "user_1", OrgID: "org_A"})
		require.NoError(t, err)
		assert.Equal(t, Namespace("org_A"), tenant.Namespace)
		assert.Equal(t, "user_1", tenant.Subject)
		assert.True(t, tenant.Resolved())
	})

	t.Run("zero tenant", func(t *testing.T) {
		assert.False(t, Tenant{}.Resolved())
	})
}
