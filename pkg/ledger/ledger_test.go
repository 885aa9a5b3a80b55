package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "companion.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, Session{
		ID: "a", Time: base, PeerPID: 100, PeerUID: 10123, Mode: rule.ModeHybrid, Rules: 4,
	}))
	require.NoError(t, l.Record(ctx, Session{
		ID: "b", Time: base.Add(time.Second), PeerPID: 101, Mode: rule.ModeKernelOnly, Err: "broken pipe",
	}))
	require.NoError(t, l.Record(ctx, Session{ID: "c", Time: base.Add(2 * time.Second)}))

	got, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, Session{
		ID:      "b",
		Time:    base.Add(time.Second),
		PeerPID: 101,
		Mode:    rule.ModeKernelOnly,
		Err:     "broken pipe",
	}, got[1])

	all, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint32(10123), all[2].PeerUID)
	assert.Equal(t, 4, all[2].Rules)
}

func TestRecordRequiresID(t *testing.T) {
	l := openTestLedger(t)
	require.ErrorIs(t, l.Record(context.Background(), Session{}), ErrSessionID)
}

func TestRecordDuplicateID(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	require.NoError(t, l.Record(ctx, Session{ID: "a"}))
	require.ErrorIs(t, l.Record(ctx, Session{ID: "a"}), ErrRecord)
}

func TestRecentZeroLimit(t *testing.T) {
	l := openTestLedger(t)
	got, err := l.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companion.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), Session{ID: "a"}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	got, err := l.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
