package module

import "errors"

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNoHost       = errors.New("module not loaded by a host")
	ErrConnect      = errors.New("connect to companion")
	ErrFontCache    = errors.New("font cache unavailable")
	ErrWarmUp       = errors.New("warm up font")
)
