// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielhkuo/campus-ballot/auth"
)

type contextKey int

const claimsKey contextKey = iota

// RequireAuth validates the Authorization bearer token and stores the
// verified claims in the request context.
func RequireAuth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization header must be a bearer token")
			return
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth plus an admin role check.
func RequireAdmin(secret string, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(secret, func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r)
		if claims == nil || !claims.IsAdmin {
			ErrorResponse(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next(w, r)
	})
}

// ClaimsFrom returns the verified claims set by RequireAuth, or nil.
func ClaimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}
