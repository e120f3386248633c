package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/models"
	"github.com/dmitrijs2005/gophnotes/internal/repositories/kv"
)

// UpdateNoteInput carries the replacement field values for
// NoteRepository.Update.
//
// Title, Body and ImageURI always replace the stored values; an empty
// ImageURI clears a previously attached image. Category and IsPinned keep
// the stored value when nil.
type UpdateNoteInput struct {
	Title    string
	Body     string
	ImageURI string
	Category *string
	IsPinned *bool
}

// NoteRepository owns the note collection of the currently signed-in user.
// Every operation fails with common.ErrNoSession while signed out.
//
// The collection is persisted as a whole under "notes:<username>"; each
// mutation rewrites the complete collection, so readers never observe a
// partially written state. Mutations are serialized internally, which rules
// out lost updates between back-to-back calls.
type NoteRepository interface {
	// List returns a snapshot copy of the active user's notes, newest
	// created first.
	List(ctx context.Context) ([]models.Note, error)

	// Add validates and stores a new note and returns it.
	Add(ctx context.Context, title, body, imageURI, category string) (*models.Note, error)

	// Update replaces the mutable fields of the note with the given id.
	Update(ctx context.Context, id string, in UpdateNoteInput) error

	// Delete removes the note with the given id. Deleting an id twice
	// surfaces common.ErrNoteNotFound on the second call.
	Delete(ctx context.Context, id string) error

	// Refresh discards the in-memory snapshot and reloads it from the
	// durable store.
	Refresh(ctx context.Context) error

	// Invalidate drops the in-memory snapshot without touching durable
	// state. Call it on sign-out so the next session starts from a
	// fresh load.
	Invalidate()
}

type noteRepository struct {
	store    kv.Repository
	sessions SessionSource

	// test seams
	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	owner  string
	loaded bool
	notes  []models.Note
}

// NewNoteRepository constructs a NoteRepository scoped to whatever identity
// sessions reports as current.
func NewNoteRepository(db *sql.DB, sessions SessionSource) NoteRepository {
	return &noteRepository{
		store:    kv.NewSQLiteRepository(db),
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func notesKey(username string) string {
	return "notes:" + username
}

// ensureLoaded resolves the active user and loads their collection when the
// snapshot is missing or belongs to a different user. Callers must hold mu.
func (r *noteRepository) ensureLoaded(ctx context.Context) (string, error) {
	user, ok := r.sessions.Current()
	if !ok {
		r.owner = ""
		r.loaded = false
		r.notes = nil
		return "", common.ErrNoSession
	}

	if r.loaded && r.owner == user {
		return user, nil
	}

	stored, err := r.store.Get(ctx, notesKey(user))
	if err != nil {
		return "", fmt.Errorf("notes read error: %w", err)
	}

	var notes []models.Note
	if stored != nil {
		if err := json.Unmarshal(stored, &notes); err != nil {
			return "", fmt.Errorf("notes decode error: %w", err)
		}
	}

	r.owner = user
	r.notes = notes
	r.loaded = true
	return user, nil
}

// persist writes the complete collection for user. The in-memory snapshot
// is only swapped by the caller after persist succeeds, so a failed write
// leaves the snapshot unchanged.
func (r *noteRepository) persist(ctx context.Context, user string, notes []models.Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("notes encode error: %w", err)
	}

	if err := r.store.Set(ctx, notesKey(user), data); err != nil {
		return fmt.Errorf("notes write error: %w", err)
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(r.notes), nil
}

func (r *noteRepository) Add(ctx context.Context, title, body, imageURI, category string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		return nil, common.ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > common.MaxTitleLength {
		return nil, common.ErrTitleTooLong
	}
	if category == "" {
		category = common.DefaultCategory
	}

	now := r.now().UnixMilli()
	note := models.Note{
		ID:        r.newID(),
		Title:     title,
		Body:      body,
		ImageURI:  imageURI,
		Category:  category,
		IsPinned:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := append([]models.Note{note}, r.notes...)
	if err := r.persist(ctx, user, next); err != nil {
		return nil, err
	}

	r.notes = next
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, id string, in UpdateNoteInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.ensureLoaded(ctx)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(r.notes, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return common.ErrNoteNotFound
	}

	next := slices.Clone(r.notes)
	n := next[i]
	n.Title = in.Title
	n.Body = in.Body
	// ImageURI is always overwritten, so passing it empty detaches a
	// previously attached image; Category and IsPinned fall back to the
	// stored value when nil.
	n.ImageURI = in.ImageURI
	if in.Category != nil {
		n.Category = *in.Category
	}
	if in.IsPinned != nil {
		n.IsPinned = *in.IsPinned
	}
	n.UpdatedAt = r.now().UnixMilli()
	next[i] = n

	if err := r.persist(ctx, user, next); err != nil {
		return err
	}

	r.notes = next
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.ensureLoaded(ctx)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(r.notes, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return common.ErrNoteNotFound
	}

	next := slices.Delete(slices.Clone(r.notes), i, i+1)
	if err := r.persist(ctx, user, next); err != nil {
		return err
	}

	r.notes = next
	return nil
}

func (r *noteRepository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded = false
	_, err := r.ensureLoaded(ctx)
	return err
}

func (r *noteRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.owner = ""
	r.loaded = false
	r.notes = nil
}
