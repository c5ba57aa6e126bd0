// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// wireClaims is the JSON shape signed into a credential. Field names are
// abbreviated to keep the payload small, matching the convention of
// abbreviating custom JWT claims.
type wireClaims struct {
	jwt.RegisteredClaims
	Kind   CredentialKind    `json:"knd"`
	Xref   uint64            `json:"xrf"`
	Client map[string][]byte `json:"cli,omitempty"`
}

// CredentialCodec signs and verifies the JWT-like auth/refresh credentials.
// Each CredentialKind is signed and verified with its own key pair so an
// auth credential can never be replayed where a refresh credential is
// expected, or vice versa.
type CredentialCodec struct {
	keys KeyMaterial
}

// NewCredentialCodec builds a CredentialCodec over keys.
func NewCredentialCodec(keys KeyMaterial) *CredentialCodec {
	return &CredentialCodec{keys: keys}
}

// Sign produces the wire-format credential string for claims and returns
// the raw signature bytes alongside it, so the caller can compute an xref
// hash over them for the credential's counterpart.
func (c *CredentialCodec) Sign(claims Claims) (token string, signature []byte, err error) {
	wc := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Identity,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Kind:   claims.Kind,
		Xref:   claims.Xref,
		Client: claims.Client,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, wc)

	key := c.privateKeyFor(claims.Kind)
	if key == nil {
		return "", nil, newError(KeyMaterialUnavailable, "sign", fmt.Sprintf("no private key for kind %q", claims.Kind), nil)
	}

	signed, err := t.SignedString(key)
	if err != nil {
		return "", nil, newError(KeyMaterialUnavailable, "sign", "failed to sign credential", err)
	}

	sig, err := signatureBytes(signed)
	if err != nil {
		return "", nil, newError(KeyMaterialUnavailable, "sign", "failed to extract signature", err)
	}

	return signed, sig, nil
}

// Verify parses and validates token as a credential of kind, enforcing
// expiry and the expected signing method and key. It returns the decoded
// claims and the credential's raw signature bytes, for xref cross-checking
// by the caller.
func (c *CredentialCodec) Verify(token string, kind CredentialKind) (Claims, []byte, error) {
	var wc wireClaims
	parsed, err := jwt.ParseWithClaims(token, &wc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.publicKeyFor(kind), nil
	})

	errKind := InvalidClientAuthenticationToken
	if kind == KindRefresh {
		errKind = InvalidClientRefreshToken
	}

	if err != nil {
		if strings.Contains(err.Error(), "token is expired") {
			return Claims{}, nil, newError(TokenExpired, "verify", "credential has expired", err)
		}
		return Claims{}, nil, newError(errKind, "verify", "failed to verify credential", err)
	}
	if !parsed.Valid {
		return Claims{}, nil, newError(errKind, "verify", "credential failed validation", nil)
	}
	if wc.Kind != kind {
		return Claims{}, nil, newError(errKind, "verify", fmt.Sprintf("expected kind %q, got %q", kind, wc.Kind), nil)
	}

	sig, err := signatureBytes(token)
	if err != nil {
		return Claims{}, nil, newError(errKind, "verify", "failed to extract signature", err)
	}

	claims := Claims{
		Kind:     wc.Kind,
		Identity: wc.Subject,
		Xref:     wc.Xref,
		Client:   wc.Client,
	}
	if wc.IssuedAt != nil {
		claims.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		claims.ExpiresAt = wc.ExpiresAt.Time
	}

	return claims, sig, nil
}

// PeekIdentity extracts the identity claim from token without verifying its
// signature or expiry. It exists for callers that need to bootstrap a
// self-asserted Verify/Resolve call (an HTTP middleware populating request
// context before any resource-scoped identity is known from elsewhere, such
// as a URL path segment). It must never be used as a substitute for Verify.
func (c *CredentialCodec) PeekIdentity(token string) (string, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &wc); err != nil {
		return "", newError(InvalidClientAuthenticationToken, "peek", "malformed credential", err)
	}
	return wc.Subject, nil
}

func (c *CredentialCodec) privateKeyFor(kind CredentialKind) interface{} {
	switch kind {
	case KindAuth:
		return c.keys.PrivateAuth()
	case KindRefresh:
		return c.keys.PrivateRefresh()
	default:
		return nil
	}
}

func (c *CredentialCodec) publicKeyFor(kind CredentialKind) interface{} {
	switch kind {
	case KindAuth:
		return c.keys.PublicAuth()
	case KindRefresh:
		return c.keys.PublicRefresh()
	default:
		return nil
	}
}

// signatureBytes decodes the third, signature segment of a compact JWT.
func signatureBytes(token string) ([]byte, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("malformed credential: expected 3 segments, got %d", len(segments))
	}
	return base64.RawURLEncoding.DecodeString(segments[2])
}

// defaultTTLs are the fallback auth/refresh credential lifetimes a Vault
// uses unless overridden via WithAuthTTL/WithRefreshTTL.
const (
	defaultAuthTTL    = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)
