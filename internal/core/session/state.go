package session

import "fmt"

// State 会话状态
type State int32

const (
	// StateClosed 初始状态，也是关闭后的终态
	StateClosed State = iota

	// StateAwaitingSYN 监听方等待 SYN
	StateAwaitingSYN

	// StateSynSent 连接方已发送 SYN，等待 SYN_ACK
	StateSynSent

	// StateEstablished 握手完成
	StateEstablished

	// StateClosing 已开始关闭（FIN 发送中）
	StateClosing
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateAwaitingSYN:
		return "awaiting-syn"
	case StateSynSent:
		return "syn-sent"
	case StateEstablished:
		return "established"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
