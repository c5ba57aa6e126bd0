// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"context"
	"crypto/subtle"
)

// UserAuthentication is the host-supplied contract for verifying a
// password and producing the initial split session for a newly
// authenticated identity. A host's concrete implementation typically looks
// up the user's stored PasswordRecord and calls a PasswordHasher to verify
// the supplied password before building the returned Session.
type UserAuthentication interface {
	// CheckUserValid verifies identity/password and, on success, returns
	// the Session to associate with the new login. It returns an
	// *Error with Kind InvalidPassword on a bad credential.
	CheckUserValid(ctx context.Context, identity, password string) (Session, error)
}

// UserIdentity compares the identity a caller asserts (e.g. from a URL
// path or an application-level session cookie) against the identity bound
// into a verified credential. The default ByteEqualIdentity requires an
// exact match; a host may supply a looser or stricter comparison (e.g.
// case-insensitive email matching).
type UserIdentity interface {
	// CheckSameUser returns nil if asserted and fromCredential name the
	// same identity, or an *Error with Kind InvalidTokenOwner otherwise.
	CheckSameUser(ctx context.Context, asserted, fromCredential string) error
}

// ByteEqualIdentity is the default UserIdentity: constant-time byte
// equality. Constant-time comparison matters here for the same reason it
// matters for password checks: identity strings participate in an
// attacker-observable decision.
type ByteEqualIdentity struct{}

func (ByteEqualIdentity) CheckSameUser(_ context.Context, asserted, fromCredential string) error {
	if subtle.ConstantTimeCompare([]byte(asserted), []byte(fromCredential)) == 1 {
		return nil
	}
	return newError(InvalidTokenOwner, "identity", "asserted identity does not match credential", nil)
}

// TrustTokenPolicy reports whether the Vault may omit the session-store
// round trip on Resolve and trust the auth credential's embedded client
// payload alone. Defaulting to false is deliberate: trusting the bearer
// credential without checking the server-side record means a revoked or
// superseded session keeps working until its auth credential naturally
// expires. A host may only set this true if it additionally binds
// credentials to a mutually authenticated transport.
type TrustTokenPolicy interface {
	TrustToken() bool
}

// staticTrustToken is a TrustTokenPolicy that always returns a fixed value.
type staticTrustToken bool

func (s staticTrustToken) TrustToken() bool { return bool(s) }
