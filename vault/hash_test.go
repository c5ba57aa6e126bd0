// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardauth/wardauth/vault"
)

func TestArgon2HasherRoundTrip(t *testing.T) {
	hasher, err := vault.NewArgon2Hasher([]byte("pepper"), vault.Argon2Params{})
	require.NoError(t, err)

	record, err := hasher.Hash("jill", "correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, string(record), "$argon2id$")

	assert.True(t, hasher.Verify("jill", "correct horse battery staple", record))
	assert.False(t, hasher.Verify("jill", "wrong password", record))
}

// TestArgon2HasherRequiresSecret covers P7's keying requirement: the
// record alone cannot be verified without the secret the hasher holds.
func TestArgon2HasherRequiresSecret(t *testing.T) {
	a, err := vault.NewArgon2Hasher([]byte("secret-a"), vault.Argon2Params{})
	require.NoError(t, err)
	b, err := vault.NewArgon2Hasher([]byte("secret-b"), vault.Argon2Params{})
	require.NoError(t, err)

	record, err := a.Hash("jack", "hunter2")
	require.NoError(t, err)

	assert.True(t, a.Verify("jack", "hunter2", record))
	assert.False(t, b.Verify("jack", "hunter2", record))
}

func TestArgon2HasherEmptyPassword(t *testing.T) {
	hasher, err := vault.NewArgon2Hasher([]byte("pepper"), vault.Argon2Params{})
	require.NoError(t, err)

	_, err = hasher.Hash("jill", "")
	require.Error(t, err)
}

func TestNewArgon2HasherRequiresSecret(t *testing.T) {
	_, err := vault.NewArgon2Hasher(nil, vault.Argon2Params{})
	require.Error(t, err)
}
