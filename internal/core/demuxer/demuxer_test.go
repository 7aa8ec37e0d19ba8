package demuxer

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mquic/internal/core/metrics"
	"github.com/dep2p/go-mquic/internal/core/muxer"
	"github.com/dep2p/go-mquic/internal/core/packetizer"
	"github.com/dep2p/go-mquic/internal/core/session"
	"github.com/dep2p/go-mquic/internal/core/transport/mem"
	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/tests/mocks"
	"github.com/dep2p/go-mquic/tests/testutil"
)

// ============================================================================
//                              脚本化会话
// ============================================================================

// scriptedSession 按顺序返回预置的数据包
type scriptedSession struct {
	mu      sync.Mutex
	inbound []*session.Inbound
	acks    []net.Addr
	closed  int
}

func (s *scriptedSession) push(p *wire.Packet) {
	b := wire.Encode(p)
	decoded, frames, err := wire.Decode(b)
	if err != nil {
		panic(err)
	}
	s.inbound = append(s.inbound, &session.Inbound{
		Packet:  decoded,
		Frames:  frames,
		From:    mocks.MockAddr("sender"),
		WireLen: len(b),
	})
}

func (s *scriptedSession) ReadPacket(ctx context.Context) (*session.Inbound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbound) == 0 {
		return nil, session.ErrSessionClosed
	}
	in := s.inbound[0]
	s.inbound = s.inbound[1:]
	return in, nil
}

func (s *scriptedSession) SendPacketTo(_ context.Context, p *wire.Packet, addr net.Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Flag == wire.FlagACK {
		s.acks = append(s.acks, addr)
	}
	return nil
}

func (s *scriptedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func dataPacket(id uint32, flag wire.Flag, frames ...wire.Frame) *wire.Packet {
	return &wire.Packet{Flag: flag, ID: id, Payload: wire.EncodeFrames(frames)}
}

// ============================================================================
//                              单元测试
// ============================================================================

func TestDemultiplexer_ReorderedFramesPlacedByOffset(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(3, wire.FlagLastOfStream, wire.Frame{StreamID: 1, Offset: 6, Data: []byte("world")}))
	s.push(dataPacket(2, wire.FlagFirstOfStream, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("hello ")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, metrics.NewCollector(nil), DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Streams, 1)
	assert.Equal(t, "hello world", string(res.Streams[0].Data))
	assert.True(t, res.Streams[0].Complete)

	// 每个数据包一个 ACK，回复到观察到的来源地址
	require.Len(t, s.acks, 2)
	assert.Equal(t, "sender", s.acks[0].String())
	assert.Equal(t, uint64(2), d.AcksSent())
}

func TestDemultiplexer_DropsStreamZeroFrames(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagLastOfStream,
		wire.Frame{StreamID: 0, Offset: 0, Data: []byte("bad")},
		wire.Frame{StreamID: 4, Offset: 0, Data: []byte("ok")}))
	s.push(dataPacket(3, wire.FlagData, wire.Frame{StreamID: 0, Offset: 0, Data: []byte("bad")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Streams, 1)
	assert.Equal(t, uint32(4), res.Streams[0].ID)
	assert.Equal(t, "ok", string(res.Streams[0].Data))

	assert.Equal(t, uint64(1), res.Report.Overall.Packets)
	assert.Equal(t, uint64(1), res.Report.Dropped)
}

func TestDemultiplexer_DuplicatePacketDropped(t *testing.T) {
	s := &scriptedSession{}
	p := dataPacket(7, wire.FlagLastOfStream, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("once")})
	s.push(p)
	s.push(p)
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "once", string(res.Streams[0].Data))
	assert.Equal(t, uint64(1), res.Report.Overall.Packets)
	assert.Equal(t, uint64(1), res.Report.Dropped)
	assert.Len(t, s.acks, 1)
}

func TestDemultiplexer_DuplicateWindowDisabled(t *testing.T) {
	s := &scriptedSession{}
	p := dataPacket(7, wire.FlagData, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("xx")})
	s.push(p)
	s.push(p)
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, Options{DuplicateWindow: 0})
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Report.Overall.Packets)
	assert.False(t, res.Streams[0].Complete)
}

func TestDemultiplexer_OversizedOffsetDropped(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagData, wire.Frame{StreamID: 1, Offset: 1 << 40, Data: []byte("x")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Streams)
	assert.Equal(t, uint64(1), res.Report.Dropped)
}

func TestDemultiplexer_RoundBudgetBoundsAllocation(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagData, wire.Frame{StreamID: 1, Offset: 0, Data: bytes.Repeat([]byte("a"), 60)}))
	// 60 + 50 超出 100 字节预算，整包丢弃
	s.push(dataPacket(3, wire.FlagData, wire.Frame{StreamID: 2, Offset: 0, Data: bytes.Repeat([]byte("b"), 50)}))
	// 偏移 30 的 10 字节使缓冲区增长 40，恰好用完预算
	s.push(dataPacket(4, wire.FlagData, wire.Frame{StreamID: 3, Offset: 30, Data: bytes.Repeat([]byte("c"), 10)}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))
	s.push(dataPacket(5, wire.FlagData, wire.Frame{StreamID: 2, Offset: 0, Data: bytes.Repeat([]byte("b"), 50)}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, Options{MaxStreamSize: 1000, MaxRoundBytes: 100, MaxStreams: 8})
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Streams, 2)
	assert.Equal(t, uint32(1), res.Streams[0].ID)
	assert.Equal(t, uint32(3), res.Streams[1].ID)
	assert.Len(t, res.Streams[1].Data, 40)
	assert.Equal(t, uint64(1), res.Report.Dropped)

	// 预算按轮重置
	res, err = d.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Streams, 1)
	assert.Equal(t, uint32(2), res.Streams[0].ID)
	assert.Len(t, res.Streams[0].Data, 50)
	assert.Zero(t, res.Report.Dropped)
}

func TestDemultiplexer_StreamCountCapped(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagData,
		wire.Frame{StreamID: 1, Offset: 0, Data: []byte("x")},
		wire.Frame{StreamID: 2, Offset: 0, Data: []byte("y")},
		wire.Frame{StreamID: 3, Offset: 0, Data: []byte("z")}))
	// 已存在的流不受数量上限影响
	s.push(dataPacket(3, wire.FlagLastOfStream, wire.Frame{StreamID: 1, Offset: 1, Data: []byte("x")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, Options{MaxStreams: 2})
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Streams, 2)
	assert.Equal(t, "xx", string(res.Streams[0].Data))
	assert.True(t, res.Streams[0].Complete)
	assert.Equal(t, "y", string(res.Streams[1].Data))
	_, ok := res.Stream(3)
	assert.False(t, ok)
	assert.Zero(t, res.Report.Dropped)
}

func TestStreamBuffer_GrowthCappedByLimit(t *testing.T) {
	b := &streamBuffer{id: 1}
	b.place(wire.Frame{StreamID: 1, Offset: 0, Data: bytes.Repeat([]byte("a"), 600)}, 1000)
	b.place(wire.Frame{StreamID: 1, Offset: 600, Data: bytes.Repeat([]byte("b"), 300)}, 1000)
	assert.Len(t, b.data, 900)
	assert.LessOrEqual(t, cap(b.data), 1000)
}

func TestDemultiplexer_IgnoresOtherControlPackets(t *testing.T) {
	s := &scriptedSession{}
	s.push(wire.NewControl(wire.FlagSYN))
	s.push(wire.NewControl(wire.FlagACK))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Streams)
	assert.Zero(t, res.Report.Overall.Packets)
	assert.Empty(t, s.acks)
}

func TestDemultiplexer_FINFinishesSession(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagData, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("partial")}))
	s.push(wire.NewControl(wire.FlagFIN))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := d.Receive(context.Background())
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Nil(t, res)
	assert.Equal(t, 1, s.closed)

	_, err = d.Receive(context.Background())
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, 1, s.closed, "FIN 只关闭一次会话")
}

func TestDemultiplexer_MultipleRounds(t *testing.T) {
	s := &scriptedSession{}
	s.push(dataPacket(2, wire.FlagLastOfStream, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("first")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))
	s.push(dataPacket(4, wire.FlagLastOfStream, wire.Frame{StreamID: 1, Offset: 0, Data: []byte("2nd")}))
	s.push(wire.NewControl(wire.FlagEndOfSessionData))
	s.push(wire.NewControl(wire.FlagFIN))

	d, err := New(s, nil, DefaultOptions())
	require.NoError(t, err)
	ctx := context.Background()

	r1, err := d.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(r1.Streams[0].Data))

	r2, err := d.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2nd", string(r2.Streams[0].Data))
	assert.Equal(t, uint64(1), r2.Report.Overall.Packets, "每轮统计独立")
	// 第一轮的结果不受第二轮影响
	assert.Equal(t, "first", string(r1.Streams[0].Data))

	_, err = d.Receive(ctx)
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, uint64(2), d.Collector().Totals().Rounds)
}

func TestDemultiplexer_ReadErrorPropagates(t *testing.T) {
	d, err := New(&scriptedSession{}, nil, DefaultOptions())
	require.NoError(t, err)

	_, err = d.Receive(context.Background())
	assert.ErrorIs(t, err, session.ErrSessionClosed)
}

func TestNew_NilSession(t *testing.T) {
	_, err := New(nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilSession)
}

// ============================================================================
//                              端到端（内存网络）
// ============================================================================

func TestDemultiplexer_WithMultiplexerOverMemNetwork(t *testing.T) {
	network := mem.NewNetwork()
	a, b, err := network.Pair()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type listenResult struct {
		s   *session.Session
		err error
	}
	lch := make(chan listenResult, 1)
	go func() {
		s, err := session.Listen(ctx, a, session.DefaultOptions())
		lch <- listenResult{s, err}
	}()

	sender, err := session.Connect(ctx, b, a.LocalAddr(), session.DefaultOptions())
	require.NoError(t, err)
	defer sender.Close()

	lr := <-lch
	require.NoError(t, lr.err)
	receiver := lr.s
	defer receiver.Close()

	payloads := testutil.ThreeStreams()
	m := muxer.New(sender, muxer.Options{MaxDatagramSize: 1200, Sizer: packetizer.FixedSizer(1000)})

	d, err := New(receiver, metrics.NewCollector(nil), DefaultOptions())
	require.NoError(t, err)

	sendErr := make(chan error, 1)
	go func() { sendErr <- m.Send(ctx, payloads) }()

	res, err := d.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, <-sendErr)

	require.Len(t, res.Streams, 3)
	for i, payload := range payloads {
		st, ok := res.Stream(uint32(i + 1))
		require.True(t, ok)
		assert.True(t, bytes.Equal(payload, st.Data))
		assert.True(t, st.Complete)

		stats, ok := res.Report.Stream(uint32(i + 1))
		require.True(t, ok)
		assert.GreaterOrEqual(t, stats.Packets, uint64(1))
	}
	// 6 + 4 + 1 个数据包
	assert.Equal(t, uint64(11), res.Report.Overall.Packets)
	assert.Equal(t, uint64(11), d.AcksSent())

	require.NoError(t, sender.Finish(ctx))
	_, err = d.Receive(ctx)
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.True(t, receiver.Closed())
}
