package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	tec "github.com/jbenet/go-temp-err-catcher"
	"go.uber.org/multierr"

	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/session")

// readBufferSize 接收缓冲区大小，能容纳任意 UDP 数据报
const readBufferSize = 64 * 1024

// Options 会话选项
type Options struct {
	// MaxDatagramSize 发送数据报的最大字节数
	MaxDatagramSize int

	// HandshakeTimeout 握手超时，0 表示只受 context 控制
	HandshakeTimeout time.Duration

	// OnMalformed 丢弃畸形数据报时回调，可为 nil
	OnMalformed func(from net.Addr, err error)
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{
		MaxDatagramSize: wire.DefaultMaxDatagramSize,
	}
}

// Inbound 收到的一个合法数据包
type Inbound struct {
	Packet  *wire.Packet
	Frames  []wire.Frame
	From    net.Addr
	WireLen int
}

// Session 两个端点之间的会话
//
// Session 拥有传入的 conn，Close 时关闭它。
type Session struct {
	id     string
	conn   net.PacketConn
	opts   Options
	remote net.Addr

	state  atomic.Int32
	nextID atomic.Uint32

	writeMu sync.Mutex
	readBuf []byte

	finOnce   sync.Once
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// New 在 conn 上创建一个处于 Closed 状态的会话
func New(conn net.PacketConn, opts Options) *Session {
	if opts.MaxDatagramSize <= 0 {
		opts.MaxDatagramSize = wire.DefaultMaxDatagramSize
	}
	return &Session{
		id:      uuid.NewString(),
		conn:    conn,
		opts:    opts,
		readBuf: make([]byte, readBufferSize),
	}
}

// ID 返回会话 ID（仅用于日志关联）
func (s *Session) ID() string { return s.id }

// State 返回当前状态
func (s *Session) State() State { return State(s.state.Load()) }

// LocalAddr 返回本地地址
func (s *Session) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// RemoteAddr 返回对端地址，握手前为 nil
func (s *Session) RemoteAddr() net.Addr { return s.remote }

// PacketsSent 返回已分配的包 ID 数量
func (s *Session) PacketsSent() uint32 { return s.nextID.Load() }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) casState(from, to State) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// ============================================================================
//                              发送
// ============================================================================

// SendPacket 分配下一个包 ID 并向对端发送一个数据报
func (s *Session) SendPacket(ctx context.Context, p *wire.Packet) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	return s.write(ctx, p, s.remote)
}

// SendPacketTo 向指定地址发送一个数据报，用于回复 ACK
func (s *Session) SendPacketTo(ctx context.Context, p *wire.Packet, addr net.Addr) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	return s.write(ctx, p, addr)
}

func (s *Session) checkWritable() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	switch s.State() {
	case StateEstablished, StateClosing:
		return nil
	default:
		return ErrNotEstablished
	}
}

// write 编码并写出一个数据报，包 ID 的分配与写出在同一把锁内完成
func (s *Session) write(ctx context.Context, p *wire.Packet, addr net.Addr) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.WireLen() > s.opts.MaxDatagramSize {
		return fmt.Errorf("%w: %d > %d", wire.ErrPacketTooLarge, p.WireLen(), s.opts.MaxDatagramSize)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p.ID = s.nextID.Add(1)
	b := wire.Encode(p)
	if _, err := s.conn.WriteTo(b, addr); err != nil {
		if s.closed.Load() {
			return ErrSessionClosed
		}
		return fmt.Errorf("write %s packet: %w", p.Flag, err)
	}
	return nil
}

// ============================================================================
//                              接收
// ============================================================================

// ReadPacket 读取下一个合法数据包
//
// 畸形数据报被丢弃并继续等待。ctx 取消时通过读截止时间解除阻塞。
func (s *Session) ReadPacket(ctx context.Context) (*Inbound, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	switch s.State() {
	case StateEstablished, StateClosing:
	default:
		return nil, ErrNotEstablished
	}
	return s.readPacket(ctx)
}

func (s *Session) readPacket(ctx context.Context) (*Inbound, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 清除上一次取消留下的截止时间
	_ = s.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var catcher tec.TempErrCatcher
	for {
		n, from, err := s.conn.ReadFrom(s.readBuf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil, ErrSessionClosed
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// 上一次读取的取消回调可能晚于本次清除截止时间才执行
				_ = s.conn.SetReadDeadline(time.Time{})
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				logger.Debug("清除过期的读截止时间", "session", log.TruncateID(s.id, 8))
				continue
			}
			if catcher.IsTemporary(err) {
				logger.Debug("临时读取错误，重试", "session", log.TruncateID(s.id, 8), "error", err)
				continue
			}
			return nil, fmt.Errorf("read packet: %w", err)
		}
		catcher.Reset()

		p, frames, err := wire.Decode(s.readBuf[:n])
		if err != nil {
			logger.Debug("丢弃畸形数据报", "session", log.TruncateID(s.id, 8), "from", from, "len", n, "error", err)
			if s.opts.OnMalformed != nil {
				s.opts.OnMalformed(from, err)
			}
			continue
		}
		return &Inbound{Packet: p, Frames: frames, From: from, WireLen: n}, nil
	}
}

// ============================================================================
//                              关闭
// ============================================================================

// Finish 向对端发送 FIN 后关闭会话
//
// 只有已建立的会话才会发送 FIN；重复调用不会发送第二个 FIN。
func (s *Session) Finish(ctx context.Context) error {
	var sendErr error
	s.finOnce.Do(func() {
		if !s.casState(StateEstablished, StateClosing) {
			return
		}
		sendErr = s.write(ctx, wire.NewControl(wire.FlagFIN), s.remote)
		logger.Debug("FIN 已发送", "session", log.TruncateID(s.id, 8), "error", sendErr)
	})
	return multierr.Append(sendErr, s.Close())
}

// Close 关闭会话和底层连接，重复调用返回第一次的结果
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.setState(StateClosed)
		s.closeErr = s.conn.Close()
		logger.Debug("会话已关闭", "session", log.TruncateID(s.id, 8), "sent", s.nextID.Load())
	})
	return s.closeErr
}

// Closed 返回会话是否已关闭
func (s *Session) Closed() bool { return s.closed.Load() }
