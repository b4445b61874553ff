// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// ownerKey is the context key for storing the authenticated owner.
const ownerKey ContextKey = "owner"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (OwnerGetter, error)
}

// OwnerGetter extracts the owner identity from token claims.
type OwnerGetter interface {
	GetOwner() string
}

// Unauthorized writes the 401 response. Replaceable so servers can keep
// their own error body shape.
type Unauthorized func(w http.ResponseWriter, r *http.Request, reason string)

func plainUnauthorized(w http.ResponseWriter, _ *http.Request, _ string) {
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// AuthMiddleware creates middleware that validates bearer tokens and adds
// the owner to the request context. A nil deny writes a plain-text 401.
func AuthMiddleware(validator TokenValidator, deny Unauthorized) func(http.Handler) http.Handler {
	if deny == nil {
		deny = plainUnauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				deny(w, r, "missing bearer token")
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				deny(w, r, "malformed authorization header")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				deny(w, r, "invalid or expired token")
				return
			}

			owner := claims.GetOwner()
			if owner == "" {
				deny(w, r, "token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwner extracts the authenticated owner from the request context.
func GetOwner(r *http.Request) (string, error) {
	owner, ok := r.Context().Value(ownerKey).(string)
	if !ok || owner == "" {
		return "", fmt.Errorf("owner not found in request context")
	}
	return owner, nil
}

// WithOwner returns ctx carrying owner, for handlers tested without the middleware.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}
