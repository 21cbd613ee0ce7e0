package httpx

import (
	"context"
	"net/http"
	"strings"
)

// Identity comes from the external authorizer (the gateway verifies the token
// and forwards these headers). The core trusts it unconditionally.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	RoleOperator = "admin"
)

type ctxKey string

const ctxCustomerID ctxKey = "customer_id"

// RequireCustomer rejects requests without a caller identity and stores the
// customer id in the request context.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			writeError(w, http.StatusForbidden, "missing caller identity")
			return
		}
		ctx := context.WithValue(r.Context(), ctxCustomerID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOperator additionally demands the operator role.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserRole) != RoleOperator {
			writeError(w, http.StatusForbidden, "operator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CustomerID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxCustomerID).(string); ok {
		return v
	}
	return ""
}
