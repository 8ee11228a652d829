package api

import (
	"context"
	"net/http"
	"strings"
)

// TenantHeader carries the caller's tenant. Authentication happens upstream.
const TenantHeader = "X-Tenant-ID"

type tenantKey struct{}

func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.TrimSpace(r.Header.Get(TenantHeader))
		if tenant == "" {
			writeError(w, http.StatusUnauthorized, "tenant_required", "missing "+TenantHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, tenant)))
	})
}

func tenantFrom(r *http.Request) string {
	tenant, _ := r.Context().Value(tenantKey{}).(string)
	return tenant
}
