package conceal

import "errors"

var (
	ErrUnsupported = errors.New("map concealment is not supported on this platform")
	ErrAllocShadow = errors.New("allocate shadow region")
	ErrRescanMaps  = errors.New("rescan mapping table")
	ErrRangeGone   = errors.New("mapping no longer present")
	ErrGrantRead   = errors.New("grant temporary read access")
	ErrCopyFault   = errors.New("fault while copying mapping")
	ErrRemap       = errors.New("remap shadow over target")
	ErrRestoreProt = errors.New("restore protection")
)
