// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/wardauth/wardauth/vault"
)

// newTestKeyMaterial builds a fresh StaticKeyMaterial for a single test.
// 1024-bit keys keep test generation fast; production hosts use
// PEMKeyLoader against operator-provisioned keys of an appropriate size.
func newTestKeyMaterial(t *testing.T) *vault.StaticKeyMaterial {
	t.Helper()

	privAuth, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate auth key: %v", err)
	}
	privRefresh, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate refresh key: %v", err)
	}

	km, err := vault.NewStaticKeyMaterial(privAuth, privRefresh, []byte("test-password-secret"))
	if err != nil {
		t.Fatalf("new static key material: %v", err)
	}
	return km
}

// fakeDirectory is an in-memory UserAuthentication for tests: it accepts
// a single configured identity/password pair and otherwise rejects.
type fakeDirectory struct {
	identity string
	password string
	session  vault.Session
}

func (f *fakeDirectory) CheckUserValid(_ context.Context, identity, password string) (vault.Session, error) {
	if identity != f.identity || password != f.password {
		return vault.Session{}, &vault.Error{Kind: vault.InvalidPassword, Context: "fakeDirectory", Reason: "no match"}
	}
	return f.session, nil
}
