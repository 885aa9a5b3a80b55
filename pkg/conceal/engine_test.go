package conceal

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enginex0/nomount-vfs/pkg/procmaps"
)

func TestSelectTargets(t *testing.T) {
	entries := []procmaps.Entry{
		{Start: 0x1000, End: 0x2000, Path: "/system/lib64/libc.so"},
		{Start: 0x2000, End: 0x3000, Path: "/data/adb/modules/fonts/system/fonts/A.ttf"},
		{Start: 0x3000, End: 0x4000, Path: ""},
		{Start: 0x4000, End: 0x5000, Path: "/system/fonts/A.ttf"},
		{Start: 0x5000, End: 0x6000, Path: "[anon:libc_malloc]"},
	}

	got := selectTargets(entries, nil)
	require.Len(t, got, 1, "install root is hidden without any pattern")
	assert.Equal(t, uintptr(0x2000), got[0].Start)

	got = selectTargets(entries, []string{"", "/system/fonts/A.ttf"})
	require.Len(t, got, 2)
	assert.Equal(t, uintptr(0x2000), got[0].Start)
	assert.Equal(t, uintptr(0x4000), got[1].Start)

	assert.Len(t, selectTargets(entries, []string{""}), 1, "empty pattern must not match everything")
}

func TestConcealMapsReadError(t *testing.T) {
	boom := errors.New("boom")
	e := New(
		WithLogger(slog.New(slog.DiscardHandler)),
		WithMapsReader(func() ([]procmaps.Entry, error) { return nil, boom }),
	)
	report := e.Conceal([]string{"x"})
	require.ErrorIs(t, report.Err, boom)
	assert.Zero(t, report.Hidden)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.Targets)
}

func TestNewNilLoggerFallsBack(t *testing.T) {
	e := New(WithLogger(nil))
	assert.NotNil(t, e.logger)
}
