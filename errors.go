package mquic

import (
	"errors"

	"github.com/dep2p/go-mquic/internal/core/demuxer"
	"github.com/dep2p/go-mquic/internal/core/muxer"
	"github.com/dep2p/go-mquic/internal/core/packetizer"
	"github.com/dep2p/go-mquic/internal/core/session"
	"github.com/dep2p/go-mquic/internal/core/wire"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 线路格式错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrMalformedPacket 数据报无法解析
	ErrMalformedPacket = wire.ErrMalformedPacket

	// ErrPacketTooLarge 数据报超过最大长度
	ErrPacketTooLarge = wire.ErrPacketTooLarge

	// ────────────────────────────────────────────────────────────────────────
	// 分帧错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrFrameSizeTooLarge Frame 放不进一个数据报
	ErrFrameSizeTooLarge = packetizer.ErrFrameSizeTooLarge

	// ErrFrameSizeTooSmall Frame 没有负载空间
	ErrFrameSizeTooSmall = packetizer.ErrFrameSizeTooSmall

	// ErrTooManyStreams 流数量超过流 ID 空间
	ErrTooManyStreams = muxer.ErrTooManyStreams

	// ────────────────────────────────────────────────────────────────────────
	// 会话错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrUnexpectedPacket 监听方收到的第一个包不是 SYN
	ErrUnexpectedPacket = session.ErrUnexpectedPacket

	// ErrConnectionFailed 发起方没有收到 SYN_ACK
	ErrConnectionFailed = session.ErrConnectionFailed

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = session.ErrSessionClosed

	// ErrNotEstablished 会话尚未建立
	ErrNotEstablished = session.ErrNotEstablished

	// ErrSessionFinished 对端已发送 FIN
	ErrSessionFinished = demuxer.ErrSessionFinished

	// ────────────────────────────────────────────────────────────────────────
	// 连接错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("mquic: connection closed")

	// ErrInvalidOption 选项无效
	ErrInvalidOption = errors.New("mquic: invalid option")
)
