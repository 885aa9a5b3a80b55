package rulesource

import "errors"

// Mode errors
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrReadConfig     = errors.New("read config file")
	ErrModeNotSet     = errors.New("hiding_mode not set")
	ErrInvalidMode    = errors.New("invalid hiding_mode")
)

// Rule errors
var (
	ErrRulesNotFound = errors.New("rules file not found")
	ErrReadRules     = errors.New("read rules file")
	ErrScanModules   = errors.New("scan modules")
)
