package ledger

import "errors"

var (
	ErrOpenLedger = errors.New("open session ledger")
	ErrSessionID  = errors.New("session id is required")
	ErrRecord     = errors.New("record session")
	ErrQuery      = errors.New("query sessions")
)
