package storedb

import "errors"

var (
	ErrPathRequired       = errors.New("database path is required")
	ErrSchemaRequired     = errors.New("schema name is required")
	ErrOpenDB             = errors.New("open database")
	ErrLock               = errors.New("database init lock")
	ErrConfigureDB        = errors.New("configure database")
	ErrCreateVersionTable = errors.New("create schema_versions table")
	ErrReadVersions       = errors.New("read applied versions")
	ErrDuplicateMigration = errors.New("duplicate migration version")
	ErrSnapshot           = errors.New("snapshot database before migration")
	ErrApplyMigration     = errors.New("apply migration")
	ErrRestore            = errors.New("restore database snapshot")
)
