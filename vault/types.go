// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package vault implements an embeddable authentication protocol engine.

It issues, validates, renews, and revokes short-lived bearer "auth"
credentials backed by a longer-lived "refresh" credential, while splitting
per-session state between a client-visible payload (carried inside the
signed auth credential) and server-only data (kept in a SessionStore keyed
by a digest of the user identity).

Architecture:

  - KeyMaterial: supplies the two asymmetric key pairs and password secret.
  - PasswordHasher: keyed, memory-hard password derivation and verification.
  - CredentialCodec: signs and verifies the JWT-like auth/refresh credentials.
  - SessionStore: server-side storage for the refresh-side session record.
  - UserAuthentication, UserIdentity, TrustTokenPolicy: the host-supplied
    policies (user lookup, identity comparison, trust-token policy).
  - Vault: orchestrates Login/Resolve/Renew/Logout/Revoke over the above.

The vault does not perform its own synchronization; a single call executes
Host lookup, then credential codec work, then session store work, in that
order, and concurrent calls touching the same identity are the host's
responsibility to serialize.
*/
package vault

import "time"

// CredentialKind distinguishes the two credential roles. A credential
// signed as one kind is never accepted where the other kind is expected.
type CredentialKind string

const (
	// KindAuth marks a short-lived, client-presented bearer credential.
	KindAuth CredentialKind = "auth"
	// KindRefresh marks a longer-lived credential used only to renew or
	// log out a session; it is never sent as a bearer credential to
	// arbitrary resource endpoints.
	KindRefresh CredentialKind = "refresh"
)

// Claims is the payload signed into a credential of either kind.
type Claims struct {
	// Kind is KindAuth or KindRefresh.
	Kind CredentialKind
	// Identity is the user identity this credential is bound to.
	Identity string
	// Xref is the cross-reference hash of the counterpart credential's
	// signature bytes, binding the auth/refresh pair together.
	Xref uint64
	// Client carries the session's client-visible key/value payload. Only
	// present on auth credentials.
	Client map[string][]byte
	// IssuedAt and ExpiresAt bound the credential's validity window.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the full session value produced by Login and returned by
// Resolve: the client-visible half (also embedded in the auth credential)
// and the server-only half (kept solely in the SessionStore).
type Session struct {
	// Client is visible to the client: it round-trips inside the signed
	// auth credential's payload.
	Client map[string][]byte
	// Server never leaves the host process: it is persisted in the
	// SessionStore under a digest of the identity and is never embedded
	// in any credential.
	Server map[string][]byte
}

// Credentials is the pair of signed wire-format strings returned by Login
// and Renew.
type Credentials struct {
	// Auth is the short-lived bearer credential.
	Auth string
	// Refresh is the longer-lived renewal/logout credential.
	Refresh string
	// AuthExpiresAt and RefreshExpiresAt mirror the two credentials' expiry
	// claims so hosts can set cookie/header lifetimes without re-parsing.
	AuthExpiresAt    time.Time
	RefreshExpiresAt time.Time
}

// RefreshRecord is what the SessionStore persists per identity: enough to
// validate a presented refresh credential and to recover the session.
type RefreshRecord struct {
	// Identity is the user identity this record belongs to.
	Identity string
	// RefreshToken is the signed refresh credential wire string currently
	// considered live for this identity. Renew compares the presented
	// credential against this value byte-for-byte.
	RefreshToken string
	// XrefOfAuth is the cross-reference hash of the auth credential
	// currently bound to this record: xref(signature of the live auth
	// credential). Resolve accepts a presented auth credential only if its
	// own signature hashes to this value, so a stale auth credential from
	// before the most recent login/renew is rejected even though it has
	// not yet expired.
	XrefOfAuth uint64
	// Session is the full split session value.
	Session Session
	// ExpiresAt is the refresh credential's expiry, duplicated here so a
	// store backed by a TTL-less medium can still prune expired records.
	ExpiresAt time.Time
}
