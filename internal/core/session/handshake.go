package session

import (
	"context"
	"fmt"
	"net"

	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

// Listen 在 conn 上等待一个 SYN 并完成握手
//
// 失败时不关闭 conn，由调用方决定是否复用。
func Listen(ctx context.Context, conn net.PacketConn, opts Options) (*Session, error) {
	s := New(conn, opts)
	if err := s.Accept(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Connect 向 remote 发起握手
//
// 失败时不关闭 conn，由调用方决定是否复用。
func Connect(ctx context.Context, conn net.PacketConn, remote net.Addr, opts Options) (*Session, error) {
	s := New(conn, opts)
	if err := s.Connect(ctx, remote); err != nil {
		return nil, err
	}
	return s, nil
}

// Accept 监听方握手：等待第一个合法包
//
// 收到 SYN 则记录对端地址、回复 SYN_ACK 并进入 Established；
// 收到其他包返回 ErrUnexpectedPacket，状态回到 Closed。
func (s *Session) Accept(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.casState(StateClosed, StateAwaitingSYN) {
		return fmt.Errorf("%w: accept in state %s", ErrInvalidState, s.State())
	}

	hctx, cancel := s.handshakeContext(ctx)
	defer cancel()

	in, err := s.readPacket(hctx)
	if err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("await SYN: %w", err)
	}
	if in.Packet.Flag != wire.FlagSYN {
		s.setState(StateClosed)
		logger.Warn("握手收到非 SYN 包", "session", log.TruncateID(s.id, 8), "flag", in.Packet.Flag, "from", in.From)
		return fmt.Errorf("%w: got %s from %s", ErrUnexpectedPacket, in.Packet.Flag, in.From)
	}

	s.remote = in.From
	if err := s.write(hctx, wire.NewControl(wire.FlagSYNACK), s.remote); err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("send SYN_ACK: %w", err)
	}

	s.setState(StateEstablished)
	logger.Info("会话已建立", "session", log.TruncateID(s.id, 8), "role", "listener", "remote", s.remote)
	return nil
}

// Connect 连接方握手：发送 SYN，等待第一个合法回复
//
// 回复不是 SYN_ACK 时返回 ErrConnectionFailed，状态回到 Closed。
func (s *Session) Connect(ctx context.Context, remote net.Addr) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if remote == nil {
		return fmt.Errorf("%w: nil remote address", ErrConnectionFailed)
	}
	if !s.casState(StateClosed, StateSynSent) {
		return fmt.Errorf("%w: connect in state %s", ErrInvalidState, s.State())
	}

	hctx, cancel := s.handshakeContext(ctx)
	defer cancel()

	s.remote = remote
	if err := s.write(hctx, wire.NewControl(wire.FlagSYN), remote); err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("%w: send SYN: %w", ErrConnectionFailed, err)
	}

	in, err := s.readPacket(hctx)
	if err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("%w: await SYN_ACK: %w", ErrConnectionFailed, err)
	}
	if in.Packet.Flag != wire.FlagSYNACK {
		s.setState(StateClosed)
		logger.Warn("握手收到非 SYN_ACK 包", "session", log.TruncateID(s.id, 8), "flag", in.Packet.Flag, "from", in.From)
		return fmt.Errorf("%w: got %s from %s", ErrConnectionFailed, in.Packet.Flag, in.From)
	}

	s.setState(StateEstablished)
	logger.Info("会话已建立", "session", log.TruncateID(s.id, 8), "role", "connector", "remote", remote)
	return nil
}

func (s *Session) handshakeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.HandshakeTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.HandshakeTimeout)
	}
	return context.WithCancel(ctx)
}
