package packetizer

import "errors"

var (
	// ErrFrameSizeTooLarge 一个 Frame 都放不进最大数据报
	ErrFrameSizeTooLarge = errors.New("frame size too large for datagram")

	// ErrFrameSizeTooSmall Frame 大小不足以容纳头部和至少一个字节
	ErrFrameSizeTooSmall = errors.New("frame size too small")

	// ErrInvalidFrameSizeRange 随机 Frame 大小区间非法
	ErrInvalidFrameSizeRange = errors.New("invalid frame size range")
)
