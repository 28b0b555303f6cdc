package middleware

import (
	"context"
	"net/http"

	"portal-notification-service/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	// ContextUserID carries the gateway-authenticated caller identity.
	ContextUserID contextKey = "user_id"
	// ContextCorrelationID tracks one request across log lines.
	ContextCorrelationID contextKey = "correlation_id"
)

// UserIDFrom returns the authenticated user id, or "" when absent.
func UserIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ContextUserID).(string); ok {
		return v
	}
	return ""
}

// CorrelationIDFrom returns the request correlation id, or "" when absent.
func CorrelationIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ContextCorrelationID).(string); ok {
		return v
	}
	return ""
}

// RequireUser trusts the X-User-ID header set by the API gateway;
// session validation happens upstream of this service.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			response.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		ctx := context.WithValue(r.Context(), ContextUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationID assigns every request an id for tracking it across its
// lifetime, echoing it back to the caller.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		w.Header().Set("X-Correlation-ID", correlationID)
		ctx := context.WithValue(r.Context(), ContextCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
