// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

// KeyMaterial supplies the cryptographic material a Vault needs: two
// distinct RSA key pairs (one per CredentialKind) and a secret used to key
// the password hasher. A Vault never signs an auth credential with the
// refresh key pair or vice versa.
type KeyMaterial interface {
	// PrivateAuth returns the key used to sign auth credentials.
	PrivateAuth() *rsa.PrivateKey
	// PublicAuth returns the key used to verify auth credentials.
	PublicAuth() *rsa.PublicKey
	// PrivateRefresh returns the key used to sign refresh credentials.
	PrivateRefresh() *rsa.PrivateKey
	// PublicRefresh returns the key used to verify refresh credentials.
	PublicRefresh() *rsa.PublicKey
	// PasswordSecret returns the keying material mixed into password
	// hashing. It must be non-empty.
	PasswordSecret() []byte
}

// StaticKeyMaterial is a KeyMaterial built from in-memory values, intended
// for tests and for hosts that manage their own key provisioning.
type StaticKeyMaterial struct {
	privAuth, privRefresh *rsa.PrivateKey
	pubAuth, pubRefresh   *rsa.PublicKey
	secret                []byte
}

// NewStaticKeyMaterial builds a StaticKeyMaterial from already-parsed keys.
func NewStaticKeyMaterial(privAuth *rsa.PrivateKey, privRefresh *rsa.PrivateKey, secret []byte) (*StaticKeyMaterial, error) {
	if privAuth == nil || privRefresh == nil {
		return nil, newError(KeyMaterialUnavailable, "keys", "auth and refresh private keys are required", nil)
	}
	if len(secret) == 0 {
		return nil, newError(KeyMaterialUnavailable, "keys", "password secret must not be empty", nil)
	}
	return &StaticKeyMaterial{
		privAuth:    privAuth,
		privRefresh: privRefresh,
		pubAuth:     &privAuth.PublicKey,
		pubRefresh:  &privRefresh.PublicKey,
		secret:      secret,
	}, nil
}

func (k *StaticKeyMaterial) PrivateAuth() *rsa.PrivateKey    { return k.privAuth }
func (k *StaticKeyMaterial) PublicAuth() *rsa.PublicKey      { return k.pubAuth }
func (k *StaticKeyMaterial) PrivateRefresh() *rsa.PrivateKey { return k.privRefresh }
func (k *StaticKeyMaterial) PublicRefresh() *rsa.PublicKey   { return k.pubRefresh }
func (k *StaticKeyMaterial) PasswordSecret() []byte          { return k.secret }

// PEMKeyLoader reads KeyMaterial from a directory following the
// conventional layout:
//
//	public_authentication.pem
//	private_authentication.pem
//	public_refresh.pem
//	private_refresh.pem
//	password_secret
type PEMKeyLoader struct {
	*StaticKeyMaterial
}

// NewPEMKeyLoader loads all four keys and the password secret from dir.
// It fails fast if any file is missing or unparsable rather than starting
// in a partially-keyed state.
func NewPEMKeyLoader(dir string) (*PEMKeyLoader, error) {
	privAuth, err := readPrivateKey(filepath.Join(dir, "private_authentication.pem"))
	if err != nil {
		return nil, err
	}
	privRefresh, err := readPrivateKey(filepath.Join(dir, "private_refresh.pem"))
	if err != nil {
		return nil, err
	}

	secretPath := filepath.Join(dir, "password_secret")
	secret, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("failed to read %s", secretPath), err)
	}

	base, err := NewStaticKeyMaterial(privAuth, privRefresh, secret)
	if err != nil {
		return nil, err
	}

	// The public keys are re-derived from the private keys above, but we
	// still validate that the standalone public PEM files on disk parse
	// correctly and match, since a host that ships only the public half to
	// a verifying-only peer needs those files to be internally consistent.
	if err := verifyPublicPEMMatches(filepath.Join(dir, "public_authentication.pem"), base.pubAuth); err != nil {
		return nil, err
	}
	if err := verifyPublicPEMMatches(filepath.Join(dir, "public_refresh.pem"), base.pubRefresh); err != nil {
		return nil, err
	}

	return &PEMKeyLoader{StaticKeyMaterial: base}, nil
}

func readPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("failed to read %s", path), err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("failed to parse %s", path), err)
	}
	return key, nil
}

func verifyPublicPEMMatches(path string, want *rsa.PublicKey) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("failed to read %s", path), err)
	}
	got, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("failed to parse %s", path), err)
	}
	if got.N.Cmp(want.N) != 0 || got.E != want.E {
		return newError(KeyMaterialUnavailable, "keys", fmt.Sprintf("%s does not match its private counterpart", path), nil)
	}
	return nil
}
