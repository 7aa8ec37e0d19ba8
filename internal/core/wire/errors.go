package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPacket 数据报头部或 Frame 边界非法
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrPacketTooLarge 编码后的数据报超过最大长度
	ErrPacketTooLarge = errors.New("packet exceeds max datagram size")
)

// malformed 构造带上下文的 ErrMalformedPacket
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPacket, fmt.Sprintf(format, args...))
}
