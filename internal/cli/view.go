package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/query"
)

// List renders the active user's notes filtered by the shell's current
// search text and ordered by its current sort option.
func (a *App) List(ctx context.Context) error {
	notes, err := a.notes.List(ctx)
	if err != nil {
		a.reportNoteError(ctx, "listing failed", err)
		return err
	}

	view := query.Project(notes, a.searchQuery, a.sortOption)

	if a.searchQuery != "" {
		fmt.Fprintf(a.out, "Search: %q (%d of %d notes)\n", a.searchQuery, len(view), len(notes))
	}
	if len(view) == 0 {
		fmt.Fprintln(a.out, "No notes.")
		return nil
	}

	for _, n := range view {
		pin := "  "
		if n.IsPinned {
			pin = "* "
		}
		fmt.Fprintf(a.out, "%s%s  %-12s  %s  %s\n", pin, n.ID, n.Category, formatTimestamp(n.UpdatedAt), n.Title)
	}
	return nil
}

// Search sets the shell's search text; without arguments it clears it.
func (a *App) Search(ctx context.Context, args []string) error {
	a.searchQuery = strings.Join(args, " ")
	if a.searchQuery == "" {
		fmt.Fprintln(a.out, "Search cleared.")
		return nil
	}
	return a.List(ctx)
}

// Sort sets the shell's sort option.
func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "Usage: sort <%s|%s|%s|%s>\n",
			query.SortUpdatedNewest, query.SortUpdatedOldest, query.SortTitleAZ, query.SortTitleZA)
		return nil
	}

	opt, err := query.ParseSortOption(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	a.sortOption = opt
	return a.List(ctx)
}

// Refresh reloads the collection from the durable store.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.notes.Refresh(ctx); err != nil {
		a.reportNoteError(ctx, "refresh failed", err)
		return err
	}
	return a.List(ctx)
}
