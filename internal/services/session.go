package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/repositories/kv"
)

// sessionKey is the store key holding the active username, if any.
const sessionKey = "session"

// SessionSource reports the identity that owns the active note namespace.
// It is the narrow dependency NoteRepository needs from the session layer.
type SessionSource interface {
	// Current returns the active username and true while signed in.
	Current() (string, bool)
}

// SessionManager owns the device's single authenticated session.
//
// Contract:
//   - Restore: load a previously persisted session on cold start.
//   - SignUp: register a credential and sign in with it (auto-login).
//   - SignIn: verify credentials and persist the session.
//   - SignOut: clear the persisted session; idempotent.
//   - Current/Loading: expose state to dependents so they can defer
//     queries until the restore read completes.
type SessionManager interface {
	SessionSource

	Restore(ctx context.Context) error
	SignUp(ctx context.Context, username string, password []byte) error
	SignIn(ctx context.Context, username string, password []byte) error
	SignOut(ctx context.Context) error
	Loading() bool
}

type sessionManager struct {
	store       kv.Repository
	credentials CredentialStore

	mu       sync.RWMutex
	username string
	signedIn bool
	loading  bool
}

// NewSessionManager constructs a SessionManager bound to the given DB and
// credential store. The initial state is signed out; call Restore to pick
// up a persisted session.
func NewSessionManager(db *sql.DB, credentials CredentialStore) SessionManager {
	return &sessionManager{store: kv.NewSQLiteRepository(db), credentials: credentials}
}

// Restore reads the persisted session record and, when present, transitions
// to the signed-in state. A session whose credential no longer exists is
// treated as stale and removed.
func (s *sessionManager) Restore(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	stored, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("session read error: %w", err)
	}
	if stored == nil {
		return nil
	}

	username := string(stored)

	// A persisted session must reference an existing credential.
	credential, err := s.store.Get(ctx, userKey(username))
	if err != nil {
		return fmt.Errorf("credential read error: %w", err)
	}
	if credential == nil {
		if err := s.store.Delete(ctx, sessionKey); err != nil {
			return fmt.Errorf("stale session delete error: %w", err)
		}
		return nil
	}

	s.setSignedIn(username)
	return nil
}

// SignUp registers the credential and immediately signs in with it.
// common.ErrDuplicateUsername propagates from registration.
func (s *sessionManager) SignUp(ctx context.Context, username string, password []byte) error {
	if err := s.credentials.Register(ctx, username, password); err != nil {
		return err
	}
	return s.SignIn(ctx, username, password)
}

// SignIn verifies the credentials, persists the session record, and
// transitions to the signed-in state. A failed verification yields
// common.ErrInvalidCredentials; an unknown user common.ErrUserNotFound.
func (s *sessionManager) SignIn(ctx context.Context, username string, password []byte) error {
	ok, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}

	if err := s.store.Set(ctx, sessionKey, []byte(username)); err != nil {
		return fmt.Errorf("session write error: %w", err)
	}

	s.setSignedIn(username)
	return nil
}

// SignOut clears the persisted session record unconditionally and
// transitions to the signed-out state. Signing out twice is not an error.
func (s *sessionManager) SignOut(ctx context.Context) error {
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("session delete error: %w", err)
	}

	s.mu.Lock()
	s.username = ""
	s.signedIn = false
	s.mu.Unlock()
	return nil
}

func (s *sessionManager) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.signedIn
}

// Loading reports whether the initial session-restore read is in progress.
func (s *sessionManager) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *sessionManager) setSignedIn(username string) {
	s.mu.Lock()
	s.username = username
	s.signedIn = true
	s.mu.Unlock()
}

// IsAuthError reports whether err belongs to the credential/session error
// family surfaced to the sign-in/sign-up UI.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrDuplicateUsername) ||
		errors.Is(err, common.ErrUserNotFound) ||
		errors.Is(err, common.ErrInvalidCredentials) ||
		errors.Is(err, common.ErrEmptyUsername)
}
