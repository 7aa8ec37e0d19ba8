package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

func dataPacket(flag wire.Flag, frames ...wire.Frame) (*wire.Packet, []wire.Frame, int) {
	p := &wire.Packet{Flag: flag, Payload: wire.EncodeFrames(frames)}
	return p, frames, p.WireLen()
}

func frame(stream uint32, offset uint64, n int) wire.Frame {
	return wire.Frame{StreamID: stream, Offset: offset, Data: make([]byte, n)}
}

// ============================================================================
//                              Collector 测试
// ============================================================================

func TestCollector_PerStreamAndOverall(t *testing.T) {
	clk := clock.NewMock()
	c := NewCollector(clk)

	p1, f1, n1 := dataPacket(wire.FlagFirstOfStream, frame(1, 0, 100), frame(1, 100, 100))
	c.Observe(p1, f1, n1)

	clk.Add(time.Second)
	p2, f2, n2 := dataPacket(wire.FlagLastOfStream, frame(1, 200, 50))
	c.Observe(p2, f2, n2)

	clk.Add(time.Second)
	p3, f3, n3 := dataPacket(wire.FlagLastOfStream, frame(2, 0, 10))
	c.Observe(p3, f3, n3)

	clk.Add(time.Second)
	c.End()

	r := c.Snapshot()
	require.Len(t, r.Streams, 2)

	s1, ok := r.Stream(1)
	require.True(t, ok)
	assert.Equal(t, uint64(2), s1.Packets)
	assert.Equal(t, uint64(3), s1.Frames)
	assert.Equal(t, uint64(n1+n2), s1.Bytes)
	assert.True(t, s1.Finalized)
	assert.Equal(t, time.Second, s1.Elapsed())

	s2, ok := r.Stream(2)
	require.True(t, ok)
	assert.Equal(t, uint64(1), s2.Packets)
	assert.Zero(t, s2.Elapsed())
	_, ok = s2.BytesPerSecond()
	assert.False(t, ok, "单包流的速率无定义")

	assert.True(t, r.Overall.Overall())
	assert.Equal(t, uint64(3), r.Overall.Packets)
	assert.Equal(t, uint64(4), r.Overall.Frames)
	assert.Equal(t, uint64(n1+n2+n3), r.Overall.Bytes)
	assert.True(t, r.Overall.Finalized)
	// 汇总在 End 时停止
	assert.Equal(t, 3*time.Second, r.Overall.Elapsed())

	rate, ok := r.Overall.BytesPerSecond()
	require.True(t, ok)
	assert.InDelta(t, float64(n1+n2+n3)/3, rate, 0.001)

	pps, ok := r.Overall.PacketsPerSecond()
	require.True(t, ok)
	assert.InDelta(t, 1.0, pps, 0.001)
}

func TestCollector_MixedStreamPacketCountsEachStream(t *testing.T) {
	c := NewCollector(clock.NewMock())

	p, f, n := dataPacket(wire.FlagData, frame(1, 0, 10), frame(2, 0, 10), frame(2, 10, 10))
	c.Observe(p, f, n)

	r := c.Snapshot()
	s1, _ := r.Stream(1)
	s2, _ := r.Stream(2)
	assert.Equal(t, uint64(1), s1.Packets)
	assert.Equal(t, uint64(1), s1.Frames)
	assert.Equal(t, uint64(1), s2.Packets)
	assert.Equal(t, uint64(2), s2.Frames)
	assert.Equal(t, uint64(n), s1.Bytes)
	assert.Equal(t, uint64(n), s2.Bytes)

	assert.Equal(t, uint64(1), r.Overall.Packets)
	assert.Equal(t, uint64(n), r.Overall.Bytes)
}

func TestCollector_IgnoresControlAndOverallFrames(t *testing.T) {
	c := NewCollector(clock.NewMock())

	c.Observe(wire.NewControl(wire.FlagEndOfSessionData), nil, wire.PacketHeaderSize)
	c.Observe(wire.NewControl(wire.FlagACK), nil, wire.PacketHeaderSize)
	c.Observe(nil, nil, 0)

	p, f, n := dataPacket(wire.FlagData, frame(0, 0, 5), frame(3, 0, 5))
	c.Observe(p, f, n)

	r := c.Snapshot()
	require.Len(t, r.Streams, 1)
	assert.Equal(t, uint32(3), r.Streams[0].StreamID)
	assert.Equal(t, uint64(1), r.Overall.Packets)
	assert.Equal(t, uint64(1), r.Overall.Frames)
}

func TestCollector_EndFinalizesOpenStreams(t *testing.T) {
	clk := clock.NewMock()
	c := NewCollector(clk)

	p, f, n := dataPacket(wire.FlagFirstOfStream, frame(1, 0, 10))
	c.Observe(p, f, n)
	clk.Add(500 * time.Millisecond)
	c.End()
	clk.Add(time.Second)
	c.End()

	s, _ := c.Snapshot().Stream(1)
	assert.True(t, s.Finalized)
	assert.Equal(t, 500*time.Millisecond, s.Elapsed())
}

func TestCollector_ResetKeepsTotals(t *testing.T) {
	c := NewCollector(clock.NewMock())

	p, f, n := dataPacket(wire.FlagLastOfStream, frame(1, 0, 10))
	c.Observe(p, f, n)
	c.Drop()
	c.End()

	assert.Equal(t, uint64(1), c.Snapshot().Dropped)
	c.Reset()

	r := c.Snapshot()
	assert.Empty(t, r.Streams)
	assert.Zero(t, r.Overall.Packets)
	assert.Zero(t, r.Dropped)

	totals := c.Totals()
	assert.Equal(t, uint64(1), totals.Packets)
	assert.Equal(t, uint64(1), totals.Dropped)
	assert.Equal(t, uint64(1), totals.Rounds)
	assert.Equal(t, uint64(1), totals.Streams)
	assert.Equal(t, uint64(n), totals.Bytes)
}

func TestCollector_SnapshotSorted(t *testing.T) {
	c := NewCollector(nil)
	for _, id := range []uint32{5, 2, 9, 1} {
		p, f, n := dataPacket(wire.FlagData, frame(id, 0, 1))
		c.Observe(p, f, n)
	}

	r := c.Snapshot()
	ids := make([]uint32, 0, len(r.Streams))
	for _, s := range r.Streams {
		ids = append(ids, s.StreamID)
	}
	assert.Equal(t, []uint32{1, 2, 5, 9}, ids)
}

func TestStats_ZeroValue(t *testing.T) {
	var s Stats
	assert.Zero(t, s.Elapsed())
	_, ok := s.BytesPerSecond()
	assert.False(t, ok)
	_, ok = s.PacketsPerSecond()
	assert.False(t, ok)
}

// ============================================================================
//                              报告输出测试
// ============================================================================

func TestWriteReport(t *testing.T) {
	clk := clock.NewMock()
	c := NewCollector(clk)
	p, f, n := dataPacket(wire.FlagFirstOfStream, frame(1, 0, 10))
	c.Observe(p, f, n)
	clk.Add(time.Second)
	p, f, n = dataPacket(wire.FlagLastOfStream, frame(1, 10, 10))
	c.Observe(p, f, n)
	c.Drop()
	c.End()

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, c.Snapshot()))

	out := buf.String()
	assert.Contains(t, out, "STREAM")
	assert.Contains(t, out, "overall")
	assert.Contains(t, out, "dropped datagrams: 1")

	// LogReport 不应 panic
	LogReport(c.Snapshot())
}
