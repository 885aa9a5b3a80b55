// Package ledger keeps a sqlite history of the sessions a companion served.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
	"github.com/Enginex0/nomount-vfs/pkg/storedb"
)

const (
	schema = "ledger"

	sqlitePrimaryMask   = 0xFF
	sqlitePrimaryBusy   = 5
	sqlitePrimaryLocked = 6

	// Fixed width so served_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	writeAttempts = 5
	writeBaseWait = 20 * time.Millisecond
)

// Session is one served client connection.
type Session struct {
	ID      string
	Time    time.Time
	PeerPID int32
	PeerUID uint32
	Mode    rule.Mode
	Rules   int
	Err     string
}

type Ledger struct {
	db *sql.DB
}

func Open(path string) (*Ledger, error) {
	db, err := storedb.Open(storedb.Options{
		Path:       path,
		Schema:     schema,
		Migrations: migrations(),
	})
	if err != nil {
		return nil, errx.Wrap(ErrOpenLedger, err)
	}
	return &Ledger{db: db}, nil
}

func migrations() []storedb.Migration {
	return []storedb.Migration{
		{
			Version: 1,
			Name:    "create_sessions",
			SQL: `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  served_at TEXT NOT NULL,
  peer_pid INTEGER NOT NULL DEFAULT 0,
  peer_uid INTEGER NOT NULL DEFAULT 0,
  mode INTEGER NOT NULL,
  rule_count INTEGER NOT NULL,
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_served_at ON sessions(served_at DESC);
`,
		},
	}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores s, retrying while another writer holds the database.
func (l *Ledger) Record(ctx context.Context, s Session) error {
	if s.ID == "" {
		return ErrSessionID
	}
	if s.Time.IsZero() {
		s.Time = time.Now()
	}

	var err error
	for attempt := range writeAttempts {
		_, err = l.db.ExecContext(ctx,
			`INSERT INTO sessions(id, served_at, peer_pid, peer_uid, mode, rule_count, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID,
			s.Time.UTC().Format(timeLayout),
			s.PeerPID,
			s.PeerUID,
			int32(s.Mode),
			s.Rules,
			s.Err,
		)
		if err == nil || !isBusy(err) || attempt == writeAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errx.Wrap(ErrRecord, ctx.Err())
		case <-time.After(writeBaseWait * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		return errx.Wrap(ErrRecord, err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, served_at, peer_pid, peer_uid, mode, rule_count, error FROM sessions ORDER BY served_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errx.Wrap(ErrQuery, err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s      Session
			served string
			mode   int32
		)
		if err := rows.Scan(&s.ID, &served, &s.PeerPID, &s.PeerUID, &mode, &s.Rules, &s.Err); err != nil {
			return nil, errx.Wrap(ErrQuery, err)
		}
		s.Time, err = time.Parse(timeLayout, served)
		if err != nil {
			return nil, errx.With(ErrQuery, ": session %s: %w", s.ID, err)
		}
		s.Mode = rule.Mode(mode)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrQuery, err)
	}
	return sessions, nil
}

func isBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & sqlitePrimaryMask {
		case sqlitePrimaryBusy, sqlitePrimaryLocked:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database is busy")
}
