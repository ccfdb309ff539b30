package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/codesbot/internal/codes"
)

const testSchema = `CREATE TABLE audit_events (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	event TEXT NOT NULL,
	action TEXT NOT NULL DEFAULT '',
	directive TEXT NOT NULL,
	mode TEXT NOT NULL,
	codes INTEGER NOT NULL,
	valid INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	db := sqlx.NewDb(raw, "sqlite3")
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return NewStore(db)
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := base
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	ctx := context.Background()

	snap := codes.Snapshot{Mode: codes.ModeIdle, Codes: map[int]string{1: "A", 2: "B"}, Valid: []int{2}}
	require.NoError(t, store.Record(ctx, NewEntry(42, EventText, "", codes.ShowPanel(codes.MsgCodesSaved, true), snap)))
	require.NoError(t, store.Record(ctx, NewEntry(42, EventAction, "show", codes.ShowPlainMessage("B"), snap)))

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, EventAction, got[0].Event)
	assert.Equal(t, "show", got[0].Action)
	assert.Equal(t, "plain", got[0].Directive)
	assert.Equal(t, EventText, got[1].Event)
	assert.Equal(t, "panel", got[1].Directive)
	for _, e := range got {
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, int64(42), e.UserID)
		assert.Equal(t, "idle", e.Mode)
		assert.Equal(t, 2, e.Codes)
		assert.Equal(t, 1, e.Valid)
	}

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreRecordKeepsExplicitID(t *testing.T) {
	store := newTestStore(t)
	id := uuid.New()
	require.NoError(t, store.Record(context.Background(), Entry{ID: id, UserID: 1, Event: EventStart, Directive: "panel", Mode: "idle"}))

	got, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestNewEntryNeverCarriesCodes(t *testing.T) {
	snap := codes.Snapshot{Mode: codes.ModeAwaitingValidIndices, Codes: map[int]string{1: "SECRET"}}
	e := NewEntry(7, EventAction, "mark", codes.ShowPanel(codes.MsgIndicesPrompt, false), snap)
	assert.Equal(t, Entry{UserID: 7, Event: EventAction, Action: "mark", Directive: "panel", Mode: "awaiting_valid_indices", Codes: 1}, e)
	assert.NoError(t, Nop{}.Record(context.Background(), e))
}
