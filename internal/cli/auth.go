package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/services"
	"github.com/dmitrijs2005/gophnotes/internal/shared"
)

// Register creates a new account and, on success, signs in with it.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.sessions.SignUp(ctx, username, password); err != nil {
		a.reportAuthError(ctx, "sign up failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", username)
	return nil
}

// Login authenticates against the local credential store.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.sessions.SignIn(ctx, username, password); err != nil {
		a.reportAuthError(ctx, "login failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", username)
	return nil
}

// Logout clears the persisted session and drops the note snapshot so the
// next account starts from a fresh load.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "err", err)
		return err
	}

	a.notes.Invalidate()
	a.searchQuery = ""

	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// reportAuthError prints expected credential mistakes to the user and logs
// everything else.
func (a *App) reportAuthError(ctx context.Context, msg string, err error) {
	if services.IsAuthError(err) {
		fmt.Fprintf(a.out, "%s: %s\n", msg, err)
		return
	}
	a.log.Error(ctx, msg, "err", err)
}
