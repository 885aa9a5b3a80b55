package procmaps

import "errors"

var (
	ErrOpenMaps = errors.New("open maps")
	ErrReadMaps = errors.New("read maps")
)
