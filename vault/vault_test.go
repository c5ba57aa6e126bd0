// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardauth/wardauth/vault"
)

func newTestVault(t *testing.T, dir vault.UserAuthentication, opts ...vault.Option) *vault.Vault {
	t.Helper()
	km := newTestKeyMaterial(t)
	v, err := vault.New(km, dir, false, opts...)
	require.NoError(t, err)
	return v
}

// TestLoginResolveRoundTrip covers P1: a freshly issued auth credential
// resolves back to the session issued at login.
func TestLoginResolveRoundTrip(t *testing.T) {
	dir := &fakeDirectory{
		identity: "alice",
		password: "correct horse",
		session: vault.Session{
			Client: map[string][]byte{"display_name": []byte("Alice")},
			Server: map[string][]byte{"role": []byte("member")},
		},
	}
	v := newTestVault(t, dir)
	ctx := context.Background()

	creds, err := v.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, creds.Auth)
	require.NotEmpty(t, creds.Refresh)

	session, err := v.Resolve(ctx, "alice", creds.Auth)
	require.NoError(t, err)
	assert.Equal(t, []byte("Alice"), session.Client["display_name"])
	assert.Equal(t, []byte("member"), session.Server["role"])
}

// TestLoginInvalidPassword covers the InvalidPassword error path.
func TestLoginInvalidPassword(t *testing.T) {
	dir := &fakeDirectory{identity: "alice", password: "correct horse"}
	v := newTestVault(t, dir)

	_, err := v.Login(context.Background(), "alice", "wrong password")
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.InvalidPassword, ve.Kind)
}

// TestRenewPreservesClientData covers P2: renewing a session keeps the
// same client payload while issuing new credentials.
func TestRenewPreservesClientData(t *testing.T) {
	dir := &fakeDirectory{
		identity: "bob",
		password: "hunter2",
		session: vault.Session{
			Client: map[string][]byte{"display_name": []byte("Bob")},
		},
	}
	v := newTestVault(t, dir)
	ctx := context.Background()

	first, err := v.Login(ctx, "bob", "hunter2")
	require.NoError(t, err)

	renewed, err := v.Renew(ctx, "bob", first.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, first.Auth, renewed.Auth)
	assert.Equal(t, first.Refresh, renewed.Refresh)

	session, err := v.Resolve(ctx, "bob", renewed.Auth)
	require.NoError(t, err)
	assert.Equal(t, []byte("Bob"), session.Client["display_name"])
}

// TestRenewRotatesXrefInvalidatingOldAuth covers P3: after a renew, the
// pre-renewal auth credential no longer resolves, because the record's
// XrefOfAuth has moved on to the newly issued auth credential's signature.
func TestRenewRotatesXrefInvalidatingOldAuth(t *testing.T) {
	dir := &fakeDirectory{identity: "carol", password: "swordfish"}
	v := newTestVault(t, dir)
	ctx := context.Background()

	first, err := v.Login(ctx, "carol", "swordfish")
	require.NoError(t, err)

	_, err = v.Renew(ctx, "carol", first.Refresh)
	require.NoError(t, err)

	_, err = v.Resolve(ctx, "carol", first.Auth)
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.CrossReferenceMismatch, ve.Kind)
}

// TestLogoutIdempotent covers P4: logging out twice with the same refresh
// credential succeeds both times, and the session is gone after the
// first call.
func TestLogoutIdempotent(t *testing.T) {
	dir := &fakeDirectory{identity: "dave", password: "letmein"}
	v := newTestVault(t, dir)
	ctx := context.Background()

	creds, err := v.Login(ctx, "dave", "letmein")
	require.NoError(t, err)

	require.NoError(t, v.Logout(ctx, "dave", creds.Refresh))
	require.NoError(t, v.Logout(ctx, "dave", creds.Refresh))

	_, err = v.Resolve(ctx, "dave", creds.Auth)
	require.Error(t, err)
	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.SessionNotFound, ve.Kind)
}

// TestResolveExpiredAuthToken covers P5: an auth credential issued with a
// negative TTL is already expired and rejected with Kind TokenExpired.
func TestResolveExpiredAuthToken(t *testing.T) {
	dir := &fakeDirectory{identity: "erin", password: "hunter2"}
	v := newTestVault(t, dir, vault.WithAuthTTL(-1*time.Second))
	ctx := context.Background()

	creds, err := v.Login(ctx, "erin", "hunter2")
	require.NoError(t, err)

	_, err = v.Resolve(ctx, "erin", creds.Auth)
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.TokenExpired, ve.Kind)
}

// TestResolveWrongAssertedIdentity covers P6: the identity asserted by the
// caller must match the identity bound into the credential.
func TestResolveWrongAssertedIdentity(t *testing.T) {
	dir := &fakeDirectory{identity: "frank", password: "hunter2"}
	v := newTestVault(t, dir)
	ctx := context.Background()

	creds, err := v.Login(ctx, "frank", "hunter2")
	require.NoError(t, err)

	_, err = v.Resolve(ctx, "someone-else", creds.Auth)
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.InvalidTokenOwner, ve.Kind)
}

// TestSingleSessionPerIdentitySupersedesPrior covers P8: a second login
// for the same identity supersedes the first; the first login's
// credentials stop resolving.
func TestSingleSessionPerIdentitySupersedesPrior(t *testing.T) {
	dir := &fakeDirectory{identity: "grace", password: "hunter2"}
	v := newTestVault(t, dir)
	ctx := context.Background()

	first, err := v.Login(ctx, "grace", "hunter2")
	require.NoError(t, err)

	second, err := v.Login(ctx, "grace", "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, first.Auth, second.Auth)

	_, err = v.Resolve(ctx, "grace", first.Auth)
	require.Error(t, err)
	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.CrossReferenceMismatch, ve.Kind)

	session, err := v.Resolve(ctx, "grace", second.Auth)
	require.NoError(t, err)
	_ = session
}

// TestRevokeRemovesSession covers host-initiated revocation without a
// presented credential.
func TestRevokeRemovesSession(t *testing.T) {
	dir := &fakeDirectory{identity: "heidi", password: "hunter2"}
	v := newTestVault(t, dir)
	ctx := context.Background()

	creds, err := v.Login(ctx, "heidi", "hunter2")
	require.NoError(t, err)

	require.NoError(t, v.Revoke(ctx, "heidi"))
	require.NoError(t, v.Revoke(ctx, "heidi")) // idempotent

	_, err = v.Resolve(ctx, "heidi", creds.Auth)
	require.Error(t, err)
}

// TestTrustTokenBypassesSessionStore documents the TrustToken hazard: with
// it enabled, Resolve accepts the auth credential's embedded client
// payload even after the server-side session has been revoked.
func TestTrustTokenBypassesSessionStore(t *testing.T) {
	dir := &fakeDirectory{
		identity: "ivan",
		password: "hunter2",
		session:  vault.Session{Client: map[string][]byte{"k": []byte("v")}},
	}
	km := newTestKeyMaterial(t)
	v, err := vault.New(km, dir, true)
	require.NoError(t, err)
	ctx := context.Background()

	creds, err := v.Login(ctx, "ivan", "hunter2")
	require.NoError(t, err)
	require.NoError(t, v.Revoke(ctx, "ivan"))

	session, err := v.Resolve(ctx, "ivan", creds.Auth)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), session.Client["k"])
}
