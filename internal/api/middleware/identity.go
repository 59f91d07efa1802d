package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"askpdf/internal/security"
)

type contextKey string

const OwnerKey contextKey = "owner"

// IdentityMiddleware resolves the caller identity used to key the session
// quota and the rate limiter. A valid bearer token wins; anonymous callers
// are keyed by client IP. An invalid token is ignored rather than rejected
// because authentication is not required to use the API.
type IdentityMiddleware struct {
	parser *security.TokenParser
}

// NewIdentityMiddleware creates a new identity middleware
func NewIdentityMiddleware(parser *security.TokenParser) *IdentityMiddleware {
	return &IdentityMiddleware{parser: parser}
}

// Resolve attaches the owner identity to the request context.
func (m *IdentityMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := ""

		if auth := r.Header.Get("Authorization"); auth != "" {
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				if sub, err := m.parser.ParseSubject(parts[1]); err == nil {
					owner = sub
				}
			}
		}

		if owner == "" {
			owner = clientIP(r)
		}

		ctx := context.WithValue(r.Context(), OwnerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwner gets the owner identity from context
func GetOwner(ctx context.Context) string {
	owner, _ := ctx.Value(OwnerKey).(string)
	return owner
}

func clientIP(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr from X-Forwarded-For upstream.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
