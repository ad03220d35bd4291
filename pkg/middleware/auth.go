package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Aleksandergreg/storefront/pkg/auth"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

type emailKey struct{}
type ownerKey struct{}

// DeviceHeader identifies an anonymous device. The mobile app sends a stable
// installation id so guest carts survive restarts.
const DeviceHeader = "X-Device-ID"

// EmailFromCtx returns the authenticated user's email, or "" when the
// request is anonymous.
func EmailFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(emailKey{}).(string); ok {
		return v
	}
	return ""
}

// OwnerFromCtx returns the storage owner for the request: the user's email
// when logged in, otherwise "device:<id>" for guest traffic.
func OwnerFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ownerKey{}).(string); ok {
		return v
	}
	return ""
}

func bearerToken(r *http.Request) string {
	return strings.Replace(r.Header.Get("Authorization"), "Bearer ", "", 1)
}

// Auth requires a valid session JWT. The claims' email is stored in the
// request context as both the user identity and the storage owner.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), emailKey{}, claims.Email)
		ctx = context.WithValue(ctx, ownerKey{}, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identity resolves the request owner without requiring a login. A valid
// JWT wins; otherwise the X-Device-ID header names an anonymous owner.
// Requests with neither are rejected — there is nothing to key state by.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), emailKey{}, claims.Email)
			ctx = context.WithValue(ctx, ownerKey{}, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		device := strings.TrimSpace(r.Header.Get(DeviceHeader))
		if device == "" {
			response.Error(w, http.StatusUnauthorized, "Missing Authorization or X-Device-ID")
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey{}, "device:"+device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
