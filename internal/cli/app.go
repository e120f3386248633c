// Package cli implements the interactive shell of gophnotes: prompts,
// command dispatch, and rendering of note lists.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/config"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/query"
	"github.com/dmitrijs2005/gophnotes/internal/services"
	"github.com/dmitrijs2005/gophnotes/internal/storage"
)

// App wires the service graph together and carries the view state of the
// shell (current search text and sort option).
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	sessions services.SessionManager
	notes    services.NoteRepository

	reader *bufio.Reader
	out    io.Writer

	searchQuery string
	sortOption  query.SortOption
}

// NewApp opens the local store and constructs the application services.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error opening local store", "dsn", cfg.DatabaseDSN, "err", err)
		return nil, err
	}

	credentials := services.NewCredentialStore(db)
	sessions := services.NewSessionManager(db, credentials)
	notes := services.NewNoteRepository(db, sessions)

	return &App{
		config:     cfg,
		log:        log,
		db:         db,
		sessions:   sessions,
		notes:      notes,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		sortOption: query.SortUpdatedNewest,
	}, nil
}

// Run restores a persisted session, then hands control to the REPL until
// the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.db.Close() }()

	a.restore(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// restore picks up the session persisted by a previous run.
func (a *App) restore(ctx context.Context) {
	if err := a.sessions.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "err", err)
		return
	}
	if user, ok := a.sessions.Current(); ok {
		a.log.Info(ctx, "session restored", "user", user)
	}
}

func (a *App) isSignedIn() bool {
	_, ok := a.sessions.Current()
	return ok
}

func (a *App) getStatus() string {
	if user, ok := a.sessions.Current(); ok {
		return "(" + user + ")"
	}
	return ""
}
