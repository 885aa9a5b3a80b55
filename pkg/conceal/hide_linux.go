//go:build linux

package conceal

import (
	"runtime/debug"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/procmaps"
)

var mprotect = unix.Mprotect

// hide swaps the file-backed range of entry for an anonymous copy. remapped
// reports whether the swap happened; err may still be set afterwards if the
// original protection could not be put back.
func (e *Engine) hide(entry procmaps.Entry) (remapped bool, err error) {
	length := entry.Len()

	shadow, err := unix.MmapPtr(-1, 0, nil, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return false, errx.Wrap(ErrAllocShadow, err)
	}

	// The table may have changed since the scan; take protection from a fresh
	// read and never touch a range that is no longer mapped.
	current, err := e.readMaps()
	if err != nil {
		_ = unix.MunmapPtr(shadow, length)
		return false, errx.Wrap(ErrRescanMaps, err)
	}
	cur, ok := procmaps.Lookup(current, entry.Start, length)
	if !ok {
		_ = unix.MunmapPtr(shadow, length)
		return false, ErrRangeGone
	}
	prot := cur.Perms.Prot()

	target := unsafe.Pointer(entry.Start)
	targetBytes := unsafe.Slice((*byte)(target), length)

	granted := false
	if prot&unix.PROT_READ == 0 {
		if err := mprotect(targetBytes, prot|unix.PROT_READ); err != nil {
			_ = unix.MunmapPtr(shadow, length)
			return false, errx.Wrap(ErrGrantRead, err)
		}
		granted = true
	}

	restore := func() {
		if granted {
			_ = mprotect(targetBytes, prot)
		}
	}

	if err := copyRegion(unsafe.Slice((*byte)(shadow), length), targetBytes); err != nil {
		_ = unix.MunmapPtr(shadow, length)
		restore()
		return false, err
	}

	if _, err := unix.MremapPtr(shadow, length, target, length,
		unix.MREMAP_FIXED|unix.MREMAP_MAYMOVE); err != nil {
		_ = unix.MunmapPtr(shadow, length)
		restore()
		return false, errx.Wrap(ErrRemap, err)
	}

	// The shadow was created read-write; put back exactly what was there.
	if err := mprotect(targetBytes, prot); err != nil {
		return true, errx.Wrap(ErrRestoreProt, err)
	}
	return true, nil
}

// copyRegion copies src into dst, turning a SIGBUS/SIGSEGV on src (a file
// truncated under its mapping, for example) into an error.
func copyRegion(dst, src []byte) (err error) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)
	defer func() {
		if r := recover(); r != nil {
			err = errx.With(ErrCopyFault, ": %v", r)
		}
	}()
	copy(dst, src)
	return nil
}
