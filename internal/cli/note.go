package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/models"
	"github.com/dmitrijs2005/gophnotes/internal/services"
)

// Add prompts for the new note's fields and stores it.
func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}

	body, err := GetMultiline(a.reader, "Enter note text:", a.out)
	if err != nil {
		return err
	}

	imageURI, err := GetSimpleText(a.reader, "Image URI (optional)", a.out)
	if err != nil {
		return err
	}

	category, err := GetSimpleText(a.reader, fmt.Sprintf("Category (default %q)", common.DefaultCategory), a.out)
	if err != nil {
		return err
	}

	note, err := a.notes.Add(ctx, title, body, imageURI, category)
	if err != nil {
		a.reportNoteError(ctx, "add failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Created note %s\n", note.ID)
	return nil
}

// Edit prompts for replacement values of an existing note. Leaving a prompt
// empty keeps the current value, except for the image URI, which is always
// replaced with what was typed (so an empty answer detaches the image).
func (a *App) Edit(ctx context.Context) error {
	note, err := a.pickNote(ctx)
	if err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s]", note.Title), a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = note.Title
	}

	body, err := GetMultiline(a.reader, "Note text (empty keeps current):", a.out)
	if err != nil {
		return err
	}
	if body == "" {
		body = note.Body
	}

	imageURI, err := GetSimpleText(a.reader, "Image URI (empty removes the image)", a.out)
	if err != nil {
		return err
	}

	in := services.UpdateNoteInput{Title: title, Body: body, ImageURI: imageURI}

	category, err := GetSimpleText(a.reader, fmt.Sprintf("Category [%s] (empty keeps current)", note.Category), a.out)
	if err != nil {
		return err
	}
	if category != "" {
		in.Category = &category
	}

	pin, err := GetSimpleText(a.reader, "Pinned? (y/n, empty keeps current)", a.out)
	if err != nil {
		return err
	}
	switch pin {
	case "y", "Y":
		v := true
		in.IsPinned = &v
	case "n", "N":
		v := false
		in.IsPinned = &v
	}

	if err := a.notes.Update(ctx, note.ID, in); err != nil {
		a.reportNoteError(ctx, "edit failed", err)
		return err
	}

	fmt.Fprintln(a.out, "Updated.")
	return nil
}

// Delete removes a note by id.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter note id", a.out)
	if err != nil {
		return err
	}

	if err := a.notes.Delete(ctx, id); err != nil {
		a.reportNoteError(ctx, "delete failed", err)
		return err
	}

	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Show prints every field of a single note.
func (a *App) Show(ctx context.Context) error {
	note, err := a.pickNote(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Id:       %s\n", note.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", note.Title)
	fmt.Fprintf(a.out, "Category: %s\n", note.Category)
	fmt.Fprintf(a.out, "Pinned:   %t\n", note.IsPinned)
	if note.ImageURI != "" {
		fmt.Fprintf(a.out, "Image:    %s\n", note.ImageURI)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", formatTimestamp(note.CreatedAt))
	fmt.Fprintf(a.out, "Updated:  %s\n", formatTimestamp(note.UpdatedAt))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, note.Body)
	return nil
}

// pickNote prompts for an id and returns the matching note from the active
// collection.
func (a *App) pickNote(ctx context.Context) (*models.Note, error) {
	id, err := GetSimpleText(a.reader, "Enter note id", a.out)
	if err != nil {
		return nil, err
	}

	notes, err := a.notes.List(ctx)
	if err != nil {
		a.reportNoteError(ctx, "listing failed", err)
		return nil, err
	}

	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}

	fmt.Fprintf(a.out, "note %s not found\n", id)
	return nil, common.ErrNoteNotFound
}

// reportNoteError prints expected note errors to the user and logs
// everything else.
func (a *App) reportNoteError(ctx context.Context, msg string, err error) {
	switch {
	case errors.Is(err, common.ErrNoSession),
		errors.Is(err, common.ErrNoteNotFound),
		errors.Is(err, common.ErrEmptyTitle),
		errors.Is(err, common.ErrTitleTooLong):
		fmt.Fprintf(a.out, "%s: %s\n", msg, err)
	default:
		a.log.Error(ctx, msg, "err", err)
	}
}

func formatTimestamp(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04")
}
