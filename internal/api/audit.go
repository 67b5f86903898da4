package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/fiveplanner/internal/auth"
)

// auditLog emits a structured audit log entry for a mutation.
func auditLog(r *http.Request, action string, resourceType string, resourceID string, detail ...any) {
	attrs := []any{
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"ip", clientIP(r),
		"request_id", RequestIDFromContext(r.Context()),
		"admin", auth.IsAdmin(r.Context()),
	}

	attrs = append(attrs, detail...)
	slog.Info("audit", attrs...)
}
