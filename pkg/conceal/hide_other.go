//go:build !linux

package conceal

import (
	"github.com/Enginex0/nomount-vfs/pkg/procmaps"
)

func (e *Engine) hide(procmaps.Entry) (bool, error) {
	return false, ErrUnsupported
}
