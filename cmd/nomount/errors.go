package main

import "errors"

// Setup errors
var (
	ErrLogLevel = errors.New("invalid log level")
)

// Companion errors
var (
	ErrStartCompanion = errors.New("start companion")
	ErrOpenLedger     = errors.New("open session ledger")
)

// Client errors
var (
	ErrDial       = errors.New("dial companion")
	ErrFetchRules = errors.New("fetch rule set")
	ErrReadMaps   = errors.New("read mapping table")
	ErrListLedger = errors.New("list sessions")
)
