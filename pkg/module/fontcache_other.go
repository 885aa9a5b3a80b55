//go:build !linux

package module

func PageCacheLookup() (FontCache, error) {
	return nil, ErrFontCache
}
