// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package directory implements the demo host's user directory: the concrete
[vault.UserAuthentication] backing the vault's Login operation, and the
account lifecycle operations (create, rotate password) a deployment needs
around it.

Architecture:

  - Storage: PostgreSQL via pgx/v5, exclusively parameterized queries.
  - Hashing: vault.Argon2Hasher, keyed by the vault's own password secret so
    the directory never invents its own password-hashing scheme.
*/
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardauth/wardauth/internal/platform/apperr"
	"github.com/wardauth/wardauth/pkg/uuidv7"
	"github.com/wardauth/wardauth/vault"
)

// Account is a row of the demo host's user table.
type Account struct {
	ID        string
	Identity  string
	Record    vault.PasswordRecord
	CreatedAt time.Time
}

// PostgresDirectory implements [vault.UserAuthentication] and the demo
// host's account lifecycle against PostgreSQL.
type PostgresDirectory struct {
	pool   *pgxpool.Pool
	hasher *vault.Argon2Hasher
}

// NewPostgresDirectory builds a PostgresDirectory. hasher must be keyed with
// the same password secret the vault's [vault.KeyMaterial] exposes, so that
// passwords hashed here verify identically inside the vault's own
// expectations of what a PasswordHasher does.
func NewPostgresDirectory(pool *pgxpool.Pool, hasher *vault.Argon2Hasher) *PostgresDirectory {
	return &PostgresDirectory{pool: pool, hasher: hasher}
}

// CheckUserValid implements [vault.UserAuthentication]. It looks up identity,
// verifies password against the stored record, and on success returns a
// Session carrying the account ID as client-visible session data.
func (d *PostgresDirectory) CheckUserValid(ctx context.Context, identity, password string) (vault.Session, error) {
	account, err := d.findByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Report the same failure as a wrong password so a directory
			// lookup can never be used to enumerate registered identities.
			return vault.Session{}, invalidPasswordError(identity)
		}
		return vault.Session{}, fmt.Errorf("directory: lookup failed: %w", err)
	}

	if !d.hasher.Verify(identity, password, account.Record) {
		return vault.Session{}, invalidPasswordError(identity)
	}

	return vault.Session{
		Client: map[string][]byte{"account_id": []byte(account.ID)},
		Server: map[string][]byte{},
	}, nil
}

// Create persists a new account with a freshly hashed password. It fails
// with a 409 [apperr.AppError] if identity is already registered.
func (d *PostgresDirectory) Create(ctx context.Context, identity, password string) (Account, error) {
	record, err := d.hasher.Hash(identity, password)
	if err != nil {
		return Account{}, fmt.Errorf("directory: hash password: %w", err)
	}

	id := uuidv7.New()

	const query = `
		INSERT INTO wardauth_demo.account (id, identity, password_record, created_at)
		VALUES ($1, $2, $3, $4)`

	now := time.Now()
	_, err = d.pool.Exec(ctx, query, id, identity, string(record), now)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, apperr.Conflict("Identity is already registered")
		}
		return Account{}, fmt.Errorf("directory: create account failed: %w", err)
	}

	return Account{ID: id, Identity: identity, Record: record, CreatedAt: now}, nil
}

// RotatePassword re-hashes and stores a new password for an existing
// account, used after a host-verified password change.
func (d *PostgresDirectory) RotatePassword(ctx context.Context, identity, newPassword string) error {
	record, err := d.hasher.Hash(identity, newPassword)
	if err != nil {
		return fmt.Errorf("directory: hash password: %w", err)
	}

	const query = `UPDATE wardauth_demo.account SET password_record = $2 WHERE identity = $1`
	tag, err := d.pool.Exec(ctx, query, identity, string(record))
	if err != nil {
		return fmt.Errorf("directory: rotate password failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

func (d *PostgresDirectory) findByIdentity(ctx context.Context, identity string) (Account, error) {
	const query = `
		SELECT id, identity, password_record, created_at
		FROM wardauth_demo.account
		WHERE identity = $1`

	var account Account
	var record string
	err := d.pool.QueryRow(ctx, query, identity).Scan(&account.ID, &account.Identity, &record, &account.CreatedAt)
	if err != nil {
		return Account{}, err
	}
	account.Record = vault.PasswordRecord(record)
	return account, nil
}

func invalidPasswordError(identity string) error {
	return &vault.Error{Kind: vault.InvalidPassword, Context: fmt.Sprintf("directory:%s", identity), Reason: "identity unknown or password mismatch"}
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), the error class raised by the account table's unique
// index on identity.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
