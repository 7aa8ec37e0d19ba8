package bandwidth

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/transport/mem"
)

// ============================================================================
//                              Meter 测试
// ============================================================================

func TestMeter_Mark(t *testing.T) {
	clk := clock.NewMock()
	m := NewMeter(clk)

	m.Mark(100)
	clk.Add(2 * time.Second)
	m.Mark(300)

	snap := m.Snapshot()
	assert.Equal(t, uint64(400), snap.Bytes)
	assert.Equal(t, uint64(2), snap.Packets)
	assert.Equal(t, 2*time.Second, snap.Elapsed())

	rate, ok := snap.Rate()
	require.True(t, ok)
	assert.InDelta(t, 200.0, rate, 0.001)
}

func TestMeter_RateUndefined(t *testing.T) {
	m := NewMeter(clock.NewMock())

	_, ok := m.Snapshot().Rate()
	assert.False(t, ok, "没有活动时速率无定义")

	m.Mark(10)
	_, ok = m.Snapshot().Rate()
	assert.False(t, ok, "单次活动时速率无定义")
}

func TestMeter_Reset(t *testing.T) {
	m := NewMeter(clock.NewMock())
	m.Mark(10)
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.Bytes)
	assert.Zero(t, snap.Packets)
	assert.True(t, snap.First.IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KiB", FormatBytes(1536))
	assert.Equal(t, "2.00 MiB", FormatBytes(2*1024*1024))
	assert.Equal(t, "10.00 B/s", FormatRate(10))
	assert.Equal(t, "1.00 GiB/s", FormatRate(1024*1024*1024))
}

// ============================================================================
//                              Counter / MeteredConn 测试
// ============================================================================

func TestCounter_Stats(t *testing.T) {
	clk := clock.NewMock()
	c := NewCounter(clk)

	c.LogSent(50)
	clk.Add(time.Second)
	c.LogRecv(70)
	clk.Add(time.Second)
	c.LogSent(50)

	s := c.Stats()
	assert.Equal(t, uint64(100), s.BytesOut)
	assert.Equal(t, uint64(70), s.BytesIn)
	assert.Equal(t, uint64(2), s.PacketsOut)
	assert.Equal(t, uint64(1), s.PacketsIn)
	assert.Equal(t, 2*time.Second, s.Elapsed())
	assert.True(t, s.Active())

	rate, ok := s.RateOut()
	require.True(t, ok)
	assert.InDelta(t, 50.0, rate, 0.001)

	_, ok = s.RateIn()
	assert.False(t, ok)

	c.Reset()
	assert.False(t, c.Stats().Active())
}

func TestMeteredConn_CountsBothDirections(t *testing.T) {
	network := mem.NewNetwork()
	a, b, err := network.Pair()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	ca := NewCounter(nil)
	cb := NewCounter(nil)
	ma := NewMeteredConn(a, ca)
	mb := NewMeteredConn(b, cb)

	_, err = ma.WriteTo([]byte("hello"), b.LocalAddr())
	require.NoError(t, err)
	_, err = ma.WriteTo([]byte("hi"), b.LocalAddr())
	require.NoError(t, err)

	buf := make([]byte, 16)
	for i := 0; i < 2; i++ {
		_, _, err = mb.ReadFrom(buf)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(7), ca.Stats().BytesOut)
	assert.Equal(t, uint64(2), ca.Stats().PacketsOut)
	assert.Equal(t, uint64(7), cb.Stats().BytesIn)
	assert.Equal(t, uint64(2), cb.Stats().PacketsIn)
}

func TestNewMeteredConn_NilCounter(t *testing.T) {
	network := mem.NewNetwork()
	a, err := network.NewConn("")
	require.NoError(t, err)
	defer a.Close()

	assert.Same(t, a, NewMeteredConn(a, nil))
}

// ============================================================================
//                              Reporter 测试
// ============================================================================

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestReporter_PeriodicLog(t *testing.T) {
	buf := captureLogs(t)
	clk := clock.NewMock()
	c := NewCounter(clk)
	c.LogSent(1024)

	r := NewReporter(c, clk)
	r.Start(time.Second)
	r.Start(time.Second) // 重复启动无效

	clk.Add(time.Second)
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(buf.String()), []byte("带宽统计报告"))
	}, 2*time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop()
	assert.Contains(t, buf.String(), "1.00 KiB")
}

func TestReporter_ZeroIntervalDisabled(t *testing.T) {
	r := NewReporter(NewCounter(nil), nil)
	r.Start(0)
	r.Stop()
}

// ============================================================================
//                              Fx 模块测试
// ============================================================================

func TestModule_Enabled(t *testing.T) {
	var counter *Counter
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&counter),
	)
	app.RequireStart()
	require.NotNil(t, counter)
	counter.LogSent(1)
	app.RequireStop()
}

func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Bandwidth.Enabled = false

	var counter *Counter
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&counter),
	)
	defer app.RequireStart().RequireStop()

	assert.Nil(t, counter)
}
