package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const insertEntry = `INSERT INTO audit_events (id, user_id, event, action, directive, mode, codes, valid, created_at)
VALUES (:id, :user_id, :event, :action, :directive, :mode, :codes, :valid, :created_at)`

const selectRecent = `SELECT id, user_id, event, action, directive, mode, codes, valid, created_at
FROM audit_events ORDER BY created_at DESC, id LIMIT ?`

// Store writes entries to the audit_events table.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store over db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record inserts e, assigning an id and timestamp when missing.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if _, err := s.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("audit: insert %s: %w", e.Event, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var out []Entry
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(selectRecent), limit); err != nil {
		return nil, fmt.Errorf("audit: select recent: %w", err)
	}
	return out, nil
}
