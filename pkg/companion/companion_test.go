package companion

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
	"github.com/Enginex0/nomount-vfs/pkg/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var discard = slog.New(slog.DiscardHandler)

type bufferConn struct {
	bytes.Buffer
	closed bool
}

func (b *bufferConn) Close() error {
	b.closed = true
	return nil
}

func fontRules() []rule.Rule {
	return []rule.Rule{
		{VirtualPath: "/system/fonts/Roboto.ttf", RealPath: "/data/adb/modules/f/Roboto.ttf", Classification: rule.Font, HideFromMaps: true},
		{VirtualPath: "/system/etc/hosts", RealPath: "/data/adb/modules/h/hosts", Classification: rule.Unknown},
	}
}

func staticLoad(mode rule.Mode, rules []rule.Rule) LoadFunc {
	return func() (rule.Mode, []rule.Rule) { return mode, rules }
}

func TestServeKernelOnly(t *testing.T) {
	c := New(staticLoad(rule.ModeKernelOnly, fontRules()), WithLogger(discard))

	var conn bufferConn
	require.NoError(t, c.Serve(&conn))
	assert.True(t, conn.closed)
	assert.Equal(t, make([]byte, 8), conn.Bytes())
	assert.Empty(t, c.Rules())
}

func TestServeHybridRoundTrip(t *testing.T) {
	c := New(staticLoad(rule.ModeHybrid, fontRules()), WithLogger(discard))

	var conn bufferConn
	require.NoError(t, c.Serve(&conn))

	mode, rules, err := wire.ReadRuleSet(&conn)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeHybrid, mode)
	assert.Equal(t, fontRules(), rules)
}

func TestInvalidRulesDropped(t *testing.T) {
	rules := append(fontRules(),
		rule.Rule{VirtualPath: "/system/etc/a", RealPath: ""},
		rule.Rule{VirtualPath: strings.Repeat("a", rule.MaxPathLen), RealPath: "/x"},
	)
	c := New(staticLoad(rule.ModeHybrid, rules), WithLogger(discard))
	assert.Len(t, c.Rules(), 2)

	var conn bufferConn
	require.NoError(t, c.Serve(&conn))
	_, got, err := wire.ReadRuleSet(&conn)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRuleSetTruncatedToWireLimit(t *testing.T) {
	rules := make([]rule.Rule, wire.MaxRules+5)
	for i := range rules {
		rules[i] = rule.Rule{VirtualPath: "/v", RealPath: "/r"}
	}
	c := New(staticLoad(rule.ModeHybrid, rules), WithLogger(discard))
	assert.Len(t, c.Rules(), wire.MaxRules)
}

func TestLoadRunsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	c := New(func() (rule.Mode, []rule.Rule) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return rule.ModeHybrid, fontRules()
	}, WithLogger(discard))

	const clients = 32
	var wg sync.WaitGroup
	results := make([][]rule.Rule, clients)
	errs := make([]error, clients)
	for i := range clients {
		server, client := net.Pipe()
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Serve(server)
		}()
		go func() {
			defer wg.Done()
			defer client.Close()
			_, results[i], errs[i] = wire.ReadRuleSet(client)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := range clients {
		require.NoError(t, errs[i])
		assert.Equal(t, fontRules(), results[i])
	}
}

type failingConn struct{}

func (failingConn) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }
func (failingConn) Close() error              { return nil }

func TestServeWriteFailure(t *testing.T) {
	c := New(staticLoad(rule.ModeHybrid, fontRules()), WithLogger(discard))
	require.ErrorIs(t, c.Serve(failingConn{}), wire.ErrWriteFrame)
}
