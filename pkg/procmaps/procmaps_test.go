package procmaps

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const sample = `12c00000-2ac00000 rw-p 00000000 00:00 0                                  [anon:dalvik-main space]
5d6f3a2000-5d6f3a4000 r--p 00000000 fd:05 1234                           /system/bin/app_process64
7f8a000000-7f8a010000 r-xp 00004000 fd:05 5678                           /data/adb/modules/fonts/system/fonts/My Font.ttf
7f8a010000-7f8a011000 ---p 00000000 00:00 0
7f8a011000-7f8a012000 rw-s 00000000 00:05 99                             /dev/ashmem/zygisk (deleted)
not a maps line
7fff0000-7ffe0000 r--p 00000000 00:00 0                                  [inverted]
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	assert.Equal(t, uintptr(0x12c00000), entries[0].Start)
	assert.Equal(t, uintptr(0x2ac00000), entries[0].End)
	assert.Equal(t, "[anon:dalvik-main space]", entries[0].Path)

	font := entries[2]
	assert.Equal(t, Perms("r-xp"), font.Perms)
	assert.Equal(t, uint64(0x4000), font.Offset)
	assert.Equal(t, "fd:05", font.Device)
	assert.Equal(t, uint64(5678), font.Inode)
	assert.Equal(t, "/data/adb/modules/fonts/system/fonts/My Font.ttf", font.Path)
	assert.Equal(t, uintptr(0x10000), font.Len())

	assert.True(t, entries[3].Anonymous())
	assert.Equal(t, "/dev/ashmem/zygisk (deleted)", entries[4].Path)
	assert.True(t, entries[4].Perms.Shared())
}

func TestPermsProt(t *testing.T) {
	assert.Equal(t, unix.PROT_READ|unix.PROT_EXEC, Perms("r-xp").Prot())
	assert.Equal(t, unix.PROT_READ|unix.PROT_WRITE, Perms("rw-p").Prot())
	assert.Equal(t, unix.PROT_NONE, Perms("---p").Prot())
	assert.Equal(t, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, Perms("rwxp").Prot())
}

func TestLookup(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	e, ok := Lookup(entries, 0x7f8a000000, 0x10000)
	require.True(t, ok)
	assert.Equal(t, Perms("r-xp"), e.Perms)

	e, ok = Lookup(entries, 0x7f8a001000, 0x1000)
	require.True(t, ok)
	assert.Equal(t, uintptr(0x7f8a000000), e.Start)

	// Range spilling past the end of the mapping.
	_, ok = Lookup(entries, 0x7f8a00f000, 0x2000)
	assert.False(t, ok)

	_, ok = Lookup(entries, 0x1000, 0x1000)
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	got := Match(entries, []string{"", "zygisk", "/data/adb/modules"})
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Path, "My Font.ttf")
	assert.Contains(t, got[1].Path, "zygisk")

	assert.Empty(t, Match(entries, []string{""}))
	assert.Empty(t, Match(entries, nil))
}

func TestReadSelf(t *testing.T) {
	entries, err := ReadSelf()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.NotEmpty(t, Match(entries, []string{exe}), "test binary should be mapped")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile("/nonexistent/maps")
	require.ErrorIs(t, err, ErrOpenMaps)
}
