// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Vault orchestrates the full login/resolve/renew/logout/revoke state
// machine over a KeyMaterial, a host-supplied UserAuthentication, and a
// SessionStore.
//
// Vault performs no internal synchronization. A single call executes the
// Host lookup, then credential codec work, then session store work, in
// that order; a host embedding the vault must serialize concurrent calls
// that touch the same identity itself.
type Vault struct {
	codec      *CredentialCodec
	directory  UserAuthentication
	store      SessionStore
	identity   UserIdentity
	trustToken TrustTokenPolicy

	authTTL    time.Duration
	refreshTTL time.Duration
}

// Option configures optional Vault collaborators and defaults.
type Option func(*Vault)

// WithStore overrides the SessionStore. The default is an in-process
// MemoryStore, suitable only for a single host process.
func WithStore(store SessionStore) Option {
	return func(v *Vault) { v.store = store }
}

// WithIdentityChecker overrides the UserIdentity comparison. The default
// is ByteEqualIdentity.
func WithIdentityChecker(identity UserIdentity) Option {
	return func(v *Vault) { v.identity = identity }
}

// WithAuthTTL overrides the auth credential lifetime for every Login and
// Renew of this Vault. The default is 15 minutes. Login and Renew take no
// per-call TTL; this per-vault value is the only lifetime setting.
func WithAuthTTL(ttl time.Duration) Option {
	return func(v *Vault) { v.authTTL = ttl }
}

// WithRefreshTTL overrides the refresh credential lifetime. The default is
// 24 hours.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(v *Vault) { v.refreshTTL = ttl }
}

// New constructs a Vault. keys supplies the signing/verification key pairs
// and password secret, directory supplies password verification and the
// initial session for a newly authenticated identity, and trustTokenBearer
// sets the default TrustTokenPolicy (see TrustTokenPolicy for the hazard
// this flag controls). Remaining collaborators default and can be
// overridden via opts.
func New(keys KeyMaterial, directory UserAuthentication, trustTokenBearer bool, opts ...Option) (*Vault, error) {
	if keys == nil {
		return nil, newError(KeyMaterialUnavailable, "new", "key material is required", nil)
	}
	if directory == nil {
		return nil, newError(KeyMaterialUnavailable, "new", "user directory is required", nil)
	}

	v := &Vault{
		codec:      NewCredentialCodec(keys),
		directory:  directory,
		store:      NewMemoryStore(),
		identity:   ByteEqualIdentity{},
		trustToken: staticTrustToken(trustTokenBearer),
		authTTL:    defaultAuthTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Login verifies identity/password against the directory and, on success,
// issues a fresh bound auth/refresh credential pair. It replaces any prior
// session for identity: wardauth enforces a single live session per
// identity, so a new login supersedes an old one rather than coexisting
// with it.
func (v *Vault) Login(ctx context.Context, identity, password string) (Credentials, error) {
	if password == "" {
		return Credentials{}, newError(MissingPassword, fmt.Sprintf("login:%s", identity), "password must not be empty", nil)
	}

	session, err := v.directory.CheckUserValid(ctx, identity, password)
	if err != nil {
		return Credentials{}, err
	}

	creds, record, err := v.issuePair(identity, session)
	if err != nil {
		return Credentials{}, err
	}

	if err := v.store.Store(ctx, digest(identity), encodeRecord(record)); err != nil {
		return Credentials{}, newError(PersistenceError, fmt.Sprintf("login:%s", identity), "failed to persist session", err)
	}

	return creds, nil
}

// Resolve verifies an auth credential presented by a client and returns
// the session it is bound to. asserted is the identity the caller claims
// to be acting as (e.g. from a URL path); it must match the identity
// embedded in the credential.
//
// Unless TrustTokenPolicy.TrustToken() is true, Resolve always loads the
// identity's current server-side record and compares the xref hash of the
// presented credential's signature with the record's XrefOfAuth, so a
// renewed or superseded session's stale auth credential is rejected even
// though it has not yet expired, and a revoked or logged-out session's is
// rejected with SessionNotFound. The credential's own Xref claim is not
// compared against the stored refresh credential.
func (v *Vault) Resolve(ctx context.Context, asserted, authToken string) (Session, error) {
	claims, sig, err := v.codec.Verify(authToken, KindAuth)
	if err != nil {
		return Session{}, err
	}
	if err := v.identity.CheckSameUser(ctx, asserted, claims.Identity); err != nil {
		return Session{}, err
	}

	if v.trustToken.TrustToken() {
		return Session{Client: claims.Client}, nil
	}

	raw, found, err := v.store.Load(ctx, digest(claims.Identity))
	if err != nil {
		return Session{}, newError(PersistenceError, fmt.Sprintf("resolve:%s", claims.Identity), "failed to load session", err)
	}
	if !found {
		return Session{}, newError(SessionNotFound, fmt.Sprintf("resolve:%s", claims.Identity), "no active session", nil)
	}
	record, err := decodeRecord(raw)
	if err != nil {
		return Session{}, newError(PersistenceError, fmt.Sprintf("resolve:%s", claims.Identity), "failed to decode session record", err)
	}

	if xref(sig) != record.XrefOfAuth {
		return Session{}, newError(CrossReferenceMismatch, fmt.Sprintf("resolve:%s", claims.Identity), "auth credential does not match current session", nil)
	}

	return Session{Client: claims.Client, Server: record.Session.Server}, nil
}

// Renew verifies a refresh credential and, if it is still the live
// credential for its identity, issues a fresh auth credential bound to
// it, carrying the same client session data. The refresh credential
// itself is reused verbatim: Renew never rotates or extends it, so a
// session's total lifetime is still bounded by the refresh credential's
// original expiry regardless of how often it is used to renew. The old
// auth credential's signature no longer hashes to the record's updated
// XrefOfAuth, so a subsequent Resolve rejects it.
func (v *Vault) Renew(ctx context.Context, asserted, refreshToken string) (Credentials, error) {
	claims, _, err := v.codec.Verify(refreshToken, KindRefresh)
	if err != nil {
		return Credentials{}, err
	}
	if err := v.identity.CheckSameUser(ctx, asserted, claims.Identity); err != nil {
		return Credentials{}, err
	}

	raw, found, err := v.store.Load(ctx, digest(claims.Identity))
	if err != nil {
		return Credentials{}, newError(PersistenceError, fmt.Sprintf("renew:%s", claims.Identity), "failed to load session", err)
	}
	if !found {
		return Credentials{}, newError(SessionNotFound, fmt.Sprintf("renew:%s", claims.Identity), "no active session", nil)
	}
	record, err := decodeRecord(raw)
	if err != nil {
		return Credentials{}, newError(PersistenceError, fmt.Sprintf("renew:%s", claims.Identity), "failed to decode session record", err)
	}
	if record.RefreshToken != refreshToken {
		return Credentials{}, newError(InvalidClientRefreshToken, fmt.Sprintf("renew:%s", claims.Identity), "refresh credential has already been superseded", nil)
	}

	refreshSig, err := signatureBytes(refreshToken)
	if err != nil {
		return Credentials{}, newError(PersistenceError, fmt.Sprintf("renew:%s", claims.Identity), "failed to decode refresh signature", err)
	}

	now := time.Now()
	authExpiry := now.Add(v.authTTL)
	authClaims := Claims{
		Kind:      KindAuth,
		Identity:  claims.Identity,
		Xref:      xref(refreshSig),
		Client:    record.Session.Client,
		IssuedAt:  now,
		ExpiresAt: authExpiry,
	}
	authToken, authSig, err := v.codec.Sign(authClaims)
	if err != nil {
		return Credentials{}, err
	}

	record.XrefOfAuth = xref(authSig)
	if err := v.store.Store(ctx, digest(claims.Identity), encodeRecord(record)); err != nil {
		return Credentials{}, newError(PersistenceError, fmt.Sprintf("renew:%s", claims.Identity), "failed to persist renewed session", err)
	}

	return Credentials{
		Auth:             authToken,
		Refresh:          record.RefreshToken,
		AuthExpiresAt:    authExpiry,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// Logout invalidates the session identified by refreshToken. It is
// idempotent: logging out twice, or logging out a credential whose
// session was already removed, succeeds both times.
func (v *Vault) Logout(ctx context.Context, asserted, refreshToken string) error {
	claims, _, err := v.codec.Verify(refreshToken, KindRefresh)
	if err != nil {
		var ve *Error
		if errors.As(err, &ve) && ve.Kind == TokenExpired {
			// An expired refresh credential names no session worth
			// retaining; nothing further to do.
			return nil
		}
		return err
	}
	if err := v.identity.CheckSameUser(ctx, asserted, claims.Identity); err != nil {
		return err
	}

	if _, _, err := v.store.Remove(ctx, digest(claims.Identity)); err != nil {
		return newError(PersistenceError, fmt.Sprintf("logout:%s", claims.Identity), "failed to remove session", err)
	}
	return nil
}

// PeekIdentity extracts the identity claim from an auth or refresh
// credential without verifying its signature or expiry. See
// [CredentialCodec.PeekIdentity] for the narrow case it exists for.
func (v *Vault) PeekIdentity(token string) (string, error) {
	return v.codec.PeekIdentity(token)
}

// Revoke forcibly invalidates identity's session without requiring a
// credential, for host-initiated actions such as an administrator-forced
// sign-out or a password change's security cleanup. It is idempotent.
func (v *Vault) Revoke(ctx context.Context, identity string) error {
	if _, _, err := v.store.Remove(ctx, digest(identity)); err != nil {
		return newError(PersistenceError, fmt.Sprintf("revoke:%s", identity), "failed to remove session", err)
	}
	return nil
}

// issuePair performs the two-pass signing procedure that binds an
// auth/refresh credential pair together via their xref claims:
//
//  1. Sign the refresh credential provisionally, with Xref left at zero.
//  2. Hash the provisional refresh signature; that becomes the auth
//     credential's Xref.
//  3. Sign the auth credential.
//  4. Hash the auth credential's signature; that becomes the refresh
//     credential's real Xref.
//  5. Re-sign the refresh credential with its now-known Xref.
func (v *Vault) issuePair(identity string, session Session) (Credentials, RefreshRecord, error) {
	now := time.Now()
	authExpiry := now.Add(v.authTTL)
	refreshExpiry := now.Add(v.refreshTTL)

	provisionalRefresh := Claims{
		Kind:      KindRefresh,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: refreshExpiry,
	}
	_, provisionalSig, err := v.codec.Sign(provisionalRefresh)
	if err != nil {
		return Credentials{}, RefreshRecord{}, err
	}

	authClaims := Claims{
		Kind:      KindAuth,
		Identity:  identity,
		Xref:      xref(provisionalSig),
		Client:    session.Client,
		IssuedAt:  now,
		ExpiresAt: authExpiry,
	}
	authToken, authSig, err := v.codec.Sign(authClaims)
	if err != nil {
		return Credentials{}, RefreshRecord{}, err
	}

	finalRefresh := Claims{
		Kind:      KindRefresh,
		Identity:  identity,
		Xref:      xref(authSig),
		IssuedAt:  now,
		ExpiresAt: refreshExpiry,
	}
	refreshToken, _, err := v.codec.Sign(finalRefresh)
	if err != nil {
		return Credentials{}, RefreshRecord{}, err
	}

	creds := Credentials{
		Auth:             authToken,
		Refresh:          refreshToken,
		AuthExpiresAt:    authExpiry,
		RefreshExpiresAt: refreshExpiry,
	}
	record := RefreshRecord{
		Identity:     identity,
		RefreshToken: refreshToken,
		XrefOfAuth:   xref(authSig),
		Session:      session,
		ExpiresAt:    refreshExpiry,
	}
	return creds, record, nil
}
