package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey int

const adminContextKey contextKey = iota

// Recorder receives authentication outcomes, typically the metrics registry.
type Recorder interface {
	IncAuthFailure()
	IncAuthSuccess()
}

// ContextWithAdmin marks the context as carrying an authenticated admin.
func ContextWithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminContextKey, true)
}

// IsAdmin reports whether the request context was authenticated as admin.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminContextKey).(bool)
	return ok
}

// AdminKeyMiddleware requires a bearer admin key on every request. When the
// verifier has no hash configured the middleware lets every request through.
func AdminKeyMiddleware(v *Verifier, rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				if rec != nil {
					rec.IncAuthFailure()
				}
				writeUnauthorized(w, "missing or malformed authorization header")
				return
			}
			if !v.Verify(token) {
				if rec != nil {
					rec.IncAuthFailure()
				}
				writeUnauthorized(w, "invalid admin key")
				return
			}

			if rec != nil {
				rec.IncAuthSuccess()
			}
			next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context())))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="fiveplanner"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:    "unauthorized",
			Message: message,
		},
	})
}
