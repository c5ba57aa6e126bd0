// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardauth/wardauth/vault"
)

func TestCredentialCodecSignVerifyRoundTrip(t *testing.T) {
	km := newTestKeyMaterial(t)
	codec := vault.NewCredentialCodec(km)

	now := time.Now()
	token, sig, err := codec.Sign(vault.Claims{
		Kind:      vault.KindAuth,
		Identity:  "alice",
		Client:    map[string][]byte{"k": []byte("v")},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	claims, gotSig, err := codec.Verify(token, vault.KindAuth)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Identity)
	assert.Equal(t, []byte("v"), claims.Client["k"])
	assert.Equal(t, sig, gotSig)
}

func TestCredentialCodecRejectsWrongKind(t *testing.T) {
	km := newTestKeyMaterial(t)
	codec := vault.NewCredentialCodec(km)

	now := time.Now()
	token, _, err := codec.Sign(vault.Claims{
		Kind:      vault.KindAuth,
		Identity:  "alice",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, _, err = codec.Verify(token, vault.KindRefresh)
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.InvalidClientRefreshToken, ve.Kind)
}

func TestCredentialCodecRejectsExpired(t *testing.T) {
	km := newTestKeyMaterial(t)
	codec := vault.NewCredentialCodec(km)

	now := time.Now()
	token, _, err := codec.Sign(vault.Claims{
		Kind:      vault.KindRefresh,
		Identity:  "alice",
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, _, err = codec.Verify(token, vault.KindRefresh)
	require.Error(t, err)

	var ve *vault.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vault.TokenExpired, ve.Kind)
}

// TestCredentialCodecRejectsCrossKeyForgery ensures an auth credential
// signed with the refresh key pair (a forgery attempt) cannot verify
// against the auth public key.
func TestCredentialCodecRejectsCrossKeyForgery(t *testing.T) {
	km := newTestKeyMaterial(t)
	codec := vault.NewCredentialCodec(km)

	now := time.Now()
	// Sign as refresh, then attempt to verify as auth: different key pairs
	// and different kind claim should both cause rejection.
	token, _, err := codec.Sign(vault.Claims{
		Kind:      vault.KindRefresh,
		Identity:  "mallory",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, _, err = codec.Verify(token, vault.KindAuth)
	require.Error(t, err)
}
