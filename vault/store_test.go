// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardauth/wardauth/vault"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := vault.NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Store(ctx, 42, []byte("payload")))

	got, found, err := store.Load(ctx, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)

	removed, found, err := store.Remove(ctx, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), removed)

	_, found, err = store.Load(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreRemoveAbsentKeyIsNotError(t *testing.T) {
	store := vault.NewMemoryStore()
	_, found, err := store.Remove(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, found)
}
