// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardauth/wardauth/internal/platform/apperr"
	"github.com/wardauth/wardauth/internal/platform/ctxutil"
	"github.com/wardauth/wardauth/internal/platform/respond"
	"github.com/wardauth/wardauth/vault"
)

// AuthResolver is the capability [Authenticate] needs from the vault: peek
// an auth credential's self-claimed identity, then verify it for real.
//
// # Self-Assertion
//
// Resolve takes an "asserted" identity to check against the credential, for
// endpoints where the asserted identity comes from elsewhere (a URL path
// segment naming the resource owner). This middleware has no such
// out-of-band identity to assert: it peeks the credential's own claimed
// identity and asserts that back at itself. That still fully validates the
// credential's signature, expiry, and cross-reference binding; it does not
// by itself authorize access to any specific resource. Handlers that serve
// a specific identity's resources must still compare the resolved
// [ctxutil.AuthUser.Identity] against the resource they are about to serve.
type AuthResolver interface {
	PeekIdentity(token string) (string, error)
	Resolve(ctx context.Context, asserted, authToken string) (vault.Session, error)
}

// Authenticate extracts a bearer auth credential, resolves it against
// resolver, and attaches the resulting [ctxutil.AuthUser] to the request
// context. A missing or invalid credential is not itself an error: the
// request proceeds unauthenticated, and [RequireAuth] is what rejects it.
func Authenticate(resolver AuthResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := bearerToken(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			identity, err := resolver.PeekIdentity(token)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			session, err := resolver.Resolve(request.Context(), identity, token)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), &ctxutil.AuthUser{
				Identity: identity,
				Session:  session,
			})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects any request [Authenticate] did not resolve to an
// [ctxutil.AuthUser] with a 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// bearerToken extracts the credential from a standard "Authorization:
// Bearer <token>" header.
func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
