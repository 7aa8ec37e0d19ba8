package session

import "errors"

var (
	// ErrUnexpectedPacket 监听方收到的第一个包不是 SYN
	ErrUnexpectedPacket = errors.New("unexpected packet during handshake")

	// ErrConnectionFailed 连接方未收到 SYN_ACK
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("session closed")

	// ErrNotEstablished 会话尚未建立
	ErrNotEstablished = errors.New("session not established")

	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("invalid session state")
)
