package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// fakeSession is a stub SessionSource with a switchable identity.
type fakeSession struct {
	user string
	ok   bool
}

func (f *fakeSession) Current() (string, bool) { return f.user, f.ok }

// newTestRepo returns a repository whose clock advances one millisecond per
// call, so consecutive mutations always get strictly increasing timestamps.
func newTestRepo(t *testing.T, db *sql.DB, fs *fakeSession) NoteRepository {
	t.Helper()
	r := NewNoteRepository(db, fs).(*noteRepository)

	base := int64(1_700_000_000_000)
	var ticks int64
	r.now = func() time.Time {
		ticks++
		return time.UnixMilli(base + ticks)
	}
	return r
}

func TestNotes_OperationsRequireSession(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{})
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)

	_, err = repo.Add(ctx, "t", "b", "", "")
	require.ErrorIs(t, err, common.ErrNoSession)

	require.ErrorIs(t, repo.Update(ctx, "id", UpdateNoteInput{}), common.ErrNoSession)
	require.ErrorIs(t, repo.Delete(ctx, "id"), common.ErrNoSession)
	require.ErrorIs(t, repo.Refresh(ctx), common.ErrNoSession)
}

func TestAdd_ValidatesTitle(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	_, err := repo.Add(ctx, "   ", "body", "", "")
	require.ErrorIs(t, err, common.ErrEmptyTitle)

	_, err = repo.Add(ctx, strings.Repeat("x", common.MaxTitleLength+1), "body", "", "")
	require.ErrorIs(t, err, common.ErrTitleTooLong)

	_, err = repo.Add(ctx, strings.Repeat("x", common.MaxTitleLength), "body", "", "")
	require.NoError(t, err)
}

func TestAdd_AppliesDefaults(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})

	n, err := repo.Add(context.Background(), "Groceries", "milk, eggs", "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, common.DefaultCategory, n.Category)
	assert.False(t, n.IsPinned)
	assert.Empty(t, n.ImageURI)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
}

func TestAdd_PrependsNewestFirst(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	_, err := repo.Add(ctx, "first", "", "", "")
	require.NoError(t, err)
	_, err = repo.Add(ctx, "second", "", "", "")
	require.NoError(t, err)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)
}

func TestAdd_GeneratesDistinctIDs(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		n, err := repo.Add(ctx, "note", "", "", "")
		require.NoError(t, err)
		_, dup := seen[n.ID]
		require.False(t, dup, "duplicate id %s", n.ID)
		seen[n.ID] = struct{}{}
	}
}

func TestNotes_RoundTripThroughRestart(t *testing.T) {
	db := setupDB(t)
	fs := &fakeSession{user: "alice", ok: true}
	ctx := context.Background()

	repo := newTestRepo(t, db, fs)
	added, err := repo.Add(ctx, "Groceries", "milk, eggs", "file:///img.png", "Shopping")
	require.NoError(t, err)

	// a fresh repository over the same store simulates a process restart
	restarted := newTestRepo(t, db, fs)
	notes, err := restarted.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, *added, notes[0])
}

func TestUpdate_ScenarioPinAndEditBody(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	n, err := repo.Add(ctx, "Groceries", "milk, eggs", "", "")
	require.NoError(t, err)

	pinned := true
	err = repo.Update(ctx, n.ID, UpdateNoteInput{
		Title:    "Groceries",
		Body:     "milk, eggs, bread",
		IsPinned: &pinned,
	})
	require.NoError(t, err)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	got := notes[0]
	assert.True(t, got.IsPinned)
	assert.Equal(t, "milk, eggs, bread", got.Body)
	assert.Greater(t, got.UpdatedAt, got.CreatedAt)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
}

func TestUpdate_ImageURIIsAlwaysOverwritten(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	n, err := repo.Add(ctx, "t", "b", "file:///img.png", "Work")
	require.NoError(t, err)

	// an update without an image clears the attachment, while the omitted
	// category and pin state are kept
	require.NoError(t, repo.Update(ctx, n.ID, UpdateNoteInput{Title: "t", Body: "b"}))

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Empty(t, notes[0].ImageURI)
	assert.Equal(t, "Work", notes[0].Category)
	assert.False(t, notes[0].IsPinned)
}

func TestUpdate_CategoryAndPinFallBackWhenNil(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	n, err := repo.Add(ctx, "t", "b", "", "Work")
	require.NoError(t, err)

	pinned := true
	require.NoError(t, repo.Update(ctx, n.ID, UpdateNoteInput{Title: "t", Body: "b", IsPinned: &pinned}))

	other := "Ideas"
	require.NoError(t, repo.Update(ctx, n.ID, UpdateNoteInput{Title: "t", Body: "b", Category: &other}))

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Ideas", notes[0].Category)
	assert.True(t, notes[0].IsPinned, "pin state must survive an update that omits it")
}

func TestUpdate_UnknownID(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})

	err := repo.Update(context.Background(), "missing", UpdateNoteInput{Title: "t"})
	require.ErrorIs(t, err, common.ErrNoteNotFound)
}

func TestDelete_SecondDeleteFails(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	n, err := repo.Add(ctx, "t", "b", "", "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, n.ID))
	require.ErrorIs(t, repo.Delete(ctx, n.ID), common.ErrNoteNotFound)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestMutations_FailedWriteLeavesSnapshotUnchanged(t *testing.T) {
	db := setupDB(t)
	repo := newTestRepo(t, db, &fakeSession{user: "alice", ok: true})
	ctx := context.Background()

	n, err := repo.Add(ctx, "keep me", "b", "", "")
	require.NoError(t, err)

	// break the durable store; the in-memory snapshot must stay intact
	require.NoError(t, db.Close())

	pinned := true
	require.Error(t, repo.Update(ctx, n.ID, UpdateNoteInput{Title: "x", IsPinned: &pinned}))
	require.Error(t, repo.Delete(ctx, n.ID))

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "keep me", notes[0].Title)
	assert.False(t, notes[0].IsPinned)
}

func TestNotes_NamespacesAreIsolated(t *testing.T) {
	db := setupDB(t)
	fs := &fakeSession{user: "alice", ok: true}
	repo := newTestRepo(t, db, fs)
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice note", "", "", "")
	require.NoError(t, err)

	// switching the session must swap in the other user's collection
	fs.user = "bob"
	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = repo.Add(ctx, "bob note", "", "", "")
	require.NoError(t, err)

	fs.user = "alice"
	notes, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "alice note", notes[0].Title)
}

func TestRefresh_ReloadsFromDurableStore(t *testing.T) {
	db := setupDB(t)
	fs := &fakeSession{user: "alice", ok: true}
	repo := newTestRepo(t, db, fs)
	ctx := context.Background()

	_, err := repo.Add(ctx, "t", "b", "", "")
	require.NoError(t, err)

	// wipe the collection behind the repository's back
	_, err = db.Exec(`DELETE FROM store WHERE key = 'notes:alice'`)
	require.NoError(t, err)

	require.NoError(t, repo.Refresh(ctx))
	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestInvalidate_DropsSnapshot(t *testing.T) {
	db := setupDB(t)
	fs := &fakeSession{user: "alice", ok: true}
	repo := newTestRepo(t, db, fs)
	ctx := context.Background()

	_, err := repo.Add(ctx, "t", "b", "", "")
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM store WHERE key = 'notes:alice'`)
	require.NoError(t, err)

	repo.Invalidate()

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
