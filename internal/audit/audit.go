// Package audit keeps an append-only journal of accepted operator actions.
// Entries hold counts only; codes never leave the session.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/codesbot/internal/codes"
)

// Events written to the journal.
const (
	EventStart  = "start"
	EventAction = "action"
	EventText   = "text"
)

// Entry is one journal row.
type Entry struct {
	ID        uuid.UUID `db:"id"`
	UserID    int64     `db:"user_id"`
	Event     string    `db:"event"`
	Action    string    `db:"action"`
	Directive string    `db:"directive"`
	Mode      string    `db:"mode"`
	Codes     int       `db:"codes"`
	Valid     int       `db:"valid"`
	CreatedAt time.Time `db:"created_at"`
}

// NewEntry describes an operation by its result and the session state after it.
func NewEntry(userID int64, event, action string, d codes.Directive, snap codes.Snapshot) Entry {
	return Entry{
		UserID:    userID,
		Event:     event,
		Action:    action,
		Directive: d.Kind.String(),
		Mode:      string(snap.Mode),
		Codes:     len(snap.Codes),
		Valid:     len(snap.Valid),
	}
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Reader lists the newest journal entries.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Nop discards entries. It is used when the journal is disabled.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }
