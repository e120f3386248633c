// Package services contains the application services of gophnotes:
// credential storage, the device session lifecycle, and the per-user
// note repository.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/repositories/kv"
)

// CredentialStore owns the mapping from username to password digest.
//
// Contract:
//   - Register: create a credential; fails with common.ErrDuplicateUsername
//     if the username is taken.
//   - Verify: recompute the digest and report whether it matches; fails with
//     common.ErrUserNotFound if no credential exists.
//
// Credentials are never mutated or deleted once created.
type CredentialStore interface {
	Register(ctx context.Context, username string, password []byte) error
	Verify(ctx context.Context, username string, password []byte) (bool, error)
}

type credentialStore struct {
	db *sql.DB
}

// NewCredentialStore constructs a CredentialStore backed by the given DB.
func NewCredentialStore(db *sql.DB) CredentialStore {
	return &credentialStore{db: db}
}

func userKey(username string) string {
	return "user:" + username
}

// hashPassword returns the hex-encoded SHA-256 digest of the password.
// The digest is unsalted and unstretched so that stores written by earlier
// releases keep verifying; it must not be reused beyond this local,
// single-device gate.
func hashPassword(password []byte) []byte {
	sum := sha256.Sum256(password)
	return []byte(hex.EncodeToString(sum[:]))
}

// Register persists a new credential. The existence check and the write run
// in one transaction so two racing registrations cannot both succeed.
func (s *credentialStore) Register(ctx context.Context, username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return common.ErrEmptyUsername
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)

		existing, err := repo.Get(ctx, userKey(username))
		if err != nil {
			return fmt.Errorf("credential lookup error: %w", err)
		}
		if existing != nil {
			return common.ErrDuplicateUsername
		}

		if err := repo.Set(ctx, userKey(username), hashPassword(password)); err != nil {
			return fmt.Errorf("credential write error: %w", err)
		}
		return nil
	})
}

// Verify reports whether password matches the stored digest for username.
// The comparison is constant-time.
func (s *credentialStore) Verify(ctx context.Context, username string, password []byte) (bool, error) {
	repo := kv.NewSQLiteRepository(s.db)

	stored, err := repo.Get(ctx, userKey(username))
	if err != nil {
		return false, fmt.Errorf("credential lookup error: %w", err)
	}
	if stored == nil {
		return false, common.ErrUserNotFound
	}

	candidate := hashPassword(password)
	return subtle.ConstantTimeCompare(stored, candidate) == 1, nil
}
