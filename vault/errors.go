// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import "fmt"

// Kind identifies a class of failure the vault can report. Hosts should
// branch on Kind, not on error string contents.
type Kind string

const (
	// InvalidPassword means the supplied password did not match the
	// stored credential for the identified user.
	InvalidPassword Kind = "INVALID_PASSWORD"
	// MissingPassword means the caller supplied an empty password.
	MissingPassword Kind = "MISSING_PASSWORD"
	// PasswordHashingFailed means the password hasher itself failed
	// (not a mismatch — an operational failure deriving or comparing hashes).
	PasswordHashingFailed Kind = "PASSWORD_HASHING_FAILED"
	// InvalidClientAuthenticationToken means the auth credential failed
	// signature verification, was malformed, or carried the wrong kind claim.
	InvalidClientAuthenticationToken Kind = "INVALID_CLIENT_AUTHENTICATION_TOKEN"
	// InvalidClientRefreshToken means the refresh credential failed
	// signature verification, was malformed, or carried the wrong kind claim.
	InvalidClientRefreshToken Kind = "INVALID_CLIENT_REFRESH_TOKEN"
	// InvalidTokenOwner means the identity asserted by the caller does not
	// match the identity bound into the credential.
	InvalidTokenOwner Kind = "INVALID_TOKEN_OWNER"
	// CrossReferenceMismatch means the xref hash of a presented auth
	// credential's signature does not match the auth binding recorded in
	// the identity's current session record.
	CrossReferenceMismatch Kind = "CROSS_REFERENCE_MISMATCH"
	// SessionNotFound means no server-side session exists for the digest
	// derived from the caller's identity.
	SessionNotFound Kind = "SESSION_NOT_FOUND"
	// TokenExpired means a credential parsed and verified correctly but its
	// expiry claim has passed.
	TokenExpired Kind = "TOKEN_EXPIRED"
	// KeyMaterialUnavailable means the vault's signing/verification keys or
	// password secret could not be loaded or are incomplete.
	KeyMaterialUnavailable Kind = "KEY_MATERIAL_UNAVAILABLE"
	// PersistenceError means the session store returned an unexpected error.
	PersistenceError Kind = "PERSISTENCE_ERROR"
)

// Error is the vault's stable error type. It deliberately carries no HTTP
// status: that translation belongs to the host, not the library.
type Error struct {
	// Kind is the machine-readable failure class.
	Kind Kind
	// Context names the operation and identity involved, e.g. "login:alice".
	Context string
	// Reason is a short human-readable description, safe to log.
	Reason string
	// Cause is the underlying error, if any. Unwrap exposes it.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vault: %s: %s: %v", e.Context, e.Reason, e.Cause)
	}
	return fmt.Sprintf("vault: %s: %s", e.Context, e.Reason)
}

// Unwrap allows errors.Is/errors.As to traverse to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, &vault.Error{Kind: vault.TokenExpired}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, context, reason string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Reason: reason, Cause: cause}
}
