package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/all-black-493/supportly/internal/core/domain"
)

type contextKey string

const contextKeyTenant = contextKey("tenant")

// authenticate resolves the bearer token to a tenant and stores it in the
// request context. Requests without a known token get 401.
func authenticate(keys KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFromRequest(r, keys)

			tenant, err := domain.TenantFromIdentity(identity)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="supportly"`)
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyTenant, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFromRequest returns nil when the request carries no known token.
func identityFromRequest(r *http.Request, keys KeyResolver) *domain.Identity {
	if keys == nil {
		return nil
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	org, ok := keys.ResolveAPIKey(token)
	if !ok {
		return nil
	}
	return &domain.Identity{Subject: "key:" + tokenPrefix(token), OrgID: org}
}

// tenantFrom returns the tenant placed in the context by authenticate.
func tenantFrom(r *http.Request) domain.Tenant {
	tenant, _ := r.Context().Value(contextKeyTenant).(domain.Tenant)
	return tenant
}

func tokenPrefix(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4]
}
