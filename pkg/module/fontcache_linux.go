//go:build linux

package module

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

// PageCacheWarmer preloads fonts into the kernel page cache.
type PageCacheWarmer struct{}

// PageCacheLookup is a FontCacheLookup backed by PageCacheWarmer.
func PageCacheLookup() (FontCache, error) {
	return PageCacheWarmer{}, nil
}

func (PageCacheWarmer) WarmUp(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errx.Wrap(ErrWarmUp, err)
	}
	defer f.Close()

	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_WILLNEED); err != nil {
		return errx.With(ErrWarmUp, " %s: %w", path, err)
	}
	return nil
}
