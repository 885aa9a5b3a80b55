package wire

import "errors"

// Encode errors
var (
	ErrWriteFrame = errors.New("write rule frame")
)

// Decode errors. ErrRuleCount and ErrPathLength are also returned by the
// encoder so both ends reject the same frames.
var (
	ErrReadMode   = errors.New("read mode")
	ErrReadCount  = errors.New("read rule count")
	ErrReadRule   = errors.New("read rule")
	ErrRuleCount  = errors.New("rule count out of range")
	ErrPathLength = errors.New("path length out of range")
)
