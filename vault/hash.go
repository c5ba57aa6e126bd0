// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params tunes the memory-hard KDF. The defaults mirror the values
// the wider ecosystem settles on for interactive login latency.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params returns the parameters used unless a caller passes
// its own to NewArgon2Hasher.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    2,
		Memory:  64 * 1024,
		Threads: 2,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// PasswordRecord is the durable, self-describing encoded form of a hashed
// password, safe to store in a host's user table.
type PasswordRecord string

// PasswordHasher hashes and verifies passwords. Implementations must use a
// keyed, memory-hard derivation: a stored record alone must not be
// sufficient to verify a password without also possessing the vault's
// password secret.
type PasswordHasher interface {
	Hash(user, password string) (PasswordRecord, error)
	Verify(user, password string, record PasswordRecord) bool
}

// Argon2Hasher implements PasswordHasher using Argon2id with an HMAC-SHA256
// pepper derived from the vault's key material folded into the password
// before derivation. Argon2 itself takes no secret parameter, so the
// pepper is mixed in ahead of time the way a keyed hash is built from an
// unkeyed one: HMAC(secret, password) replaces the raw password as Argon2's
// input, making the stored hash alone insufficient to verify passwords
// offline without the secret.
type Argon2Hasher struct {
	secret []byte
	params Argon2Params
}

// NewArgon2Hasher builds an Argon2Hasher keyed by secret, which must be
// non-empty. An empty params value selects DefaultArgon2Params.
func NewArgon2Hasher(secret []byte, params Argon2Params) (*Argon2Hasher, error) {
	if len(secret) == 0 {
		return nil, newError(KeyMaterialUnavailable, "hash", "password secret must not be empty", nil)
	}
	if params == (Argon2Params{}) {
		params = DefaultArgon2Params()
	}
	return &Argon2Hasher{secret: secret, params: params}, nil
}

// Hash derives a new salted, keyed Argon2id record for password. The user
// identity is not mixed into the hash itself (Argon2's salt already
// prevents cross-user precomputation); it is accepted for interface
// symmetry with Verify and so future implementations can domain-separate
// per user if desired.
func (h *Argon2Hasher) Hash(user, password string) (PasswordRecord, error) {
	if password == "" {
		return "", newError(MissingPassword, fmt.Sprintf("hash:%s", user), "password must not be empty", nil)
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", newError(PasswordHashingFailed, fmt.Sprintf("hash:%s", user), "failed to generate salt", err)
	}

	keyed := h.pepper(password)
	derived := argon2.IDKey(keyed, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(derived),
	)
	return PasswordRecord(encoded), nil
}

// Verify reports whether password, when peppered and re-derived with the
// parameters encoded in record, matches record's stored hash. Comparison
// is constant-time.
func (h *Argon2Hasher) Verify(user, password string, record PasswordRecord) bool {
	params, salt, want, err := decodeArgon2Record(string(record))
	if err != nil {
		return false
	}
	keyed := h.pepper(password)
	got := argon2.IDKey(keyed, salt, params.Time, params.Memory, params.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (h *Argon2Hasher) pepper(password string) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

func decodeArgon2Record(record string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(record, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, fmt.Errorf("vault: malformed argon2id record")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Argon2Params{}, nil, nil, err
	}

	var params Argon2Params
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &threads); err != nil {
		return Argon2Params{}, nil, nil, err
	}
	params.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, err
	}

	return params, salt, hash, nil
}
