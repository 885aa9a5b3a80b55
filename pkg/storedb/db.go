// Package storedb opens the companion's sqlite databases and applies
// versioned schema migrations under a file lock.
package storedb

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	_ "modernc.org/sqlite"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Options selects the database file and the migrations owned by Schema.
// Several schemas may share one file; each tracks its own versions.
type Options struct {
	Path       string
	Schema     string
	Migrations []Migration
}

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA journal_mode = WAL",
}

func Open(opts Options) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, ErrPathRequired
	}
	if opts.Schema == "" {
		return nil, ErrSchemaRequired
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}
	db.SetMaxOpenConns(1)

	err = withLock(opts.Path+".lock", func() error {
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				return errx.With(ErrConfigureDB, ": %s: %w", p, err)
			}
		}
		return migrate(db, opts)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, opts Options) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_versions (
  schema TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (schema, version)
)`); err != nil {
		return errx.Wrap(ErrCreateVersionTable, err)
	}

	migrations := slices.Clone(opts.Migrations)
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return errx.With(ErrDuplicateMigration, ": %s/%d", opts.Schema, migrations[i].Version)
		}
	}

	applied, err := appliedVersions(db, opts.Schema)
	if err != nil {
		return err
	}
	pending := slices.DeleteFunc(migrations, func(m Migration) bool { return applied[m.Version] })
	if len(pending) == 0 {
		return nil
	}

	backup := opts.Path + ".bak"
	if err := snapshot(db, backup); err != nil {
		return err
	}
	for _, m := range pending {
		if err := apply(db, opts.Schema, m); err != nil {
			_ = db.Close()
			return errors.Join(err, restore(opts.Path, backup), removeFile(backup))
		}
	}
	return removeFile(backup)
}

func appliedVersions(db *sql.DB, schema string) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_versions WHERE schema = ?`, schema)
	if err != nil {
		return nil, errx.Wrap(ErrReadVersions, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errx.Wrap(ErrReadVersions, err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadVersions, err)
	}
	return applied, nil
}

func apply(db *sql.DB, schema string, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errx.With(ErrApplyMigration, ": %s/%d %s: %w", schema, m.Version, m.Name, err)
	}
	if _, err := tx.Exec(m.SQL); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrApplyMigration, ": %s/%d %s: %w", schema, m.Version, m.Name, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_versions(schema, version, name, applied_at) VALUES (?, ?, ?, ?)`,
		schema, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrApplyMigration, ": record %s/%d: %w", schema, m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return errx.With(ErrApplyMigration, ": commit %s/%d: %w", schema, m.Version, err)
	}
	return nil
}

func snapshot(db *sql.DB, backup string) error {
	if err := removeFile(backup); err != nil {
		return errx.Wrap(ErrSnapshot, err)
	}
	if _, err := db.Exec("VACUUM INTO '" + strings.ReplaceAll(backup, "'", "''") + "'"); err != nil {
		return errx.Wrap(ErrSnapshot, err)
	}
	return nil
}

func restore(path, backup string) error {
	for _, p := range []string{path + "-wal", path + "-shm", path} {
		if err := removeFile(p); err != nil {
			return errx.Wrap(ErrRestore, err)
		}
	}
	src, err := os.Open(backup)
	if err != nil {
		return errx.Wrap(ErrRestore, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errx.Wrap(ErrRestore, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errx.Wrap(ErrRestore, err)
	}
	if err := dst.Close(); err != nil {
		return errx.Wrap(ErrRestore, err)
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func withLock(path string, fn func() error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return errx.Wrap(ErrLock, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return errx.Wrap(ErrLock, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN) //nolint:errcheck
	return fn()
}
