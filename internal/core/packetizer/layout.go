// Package packetizer 将流负载切分为 Frame 并装入数据报
//
// 给定目标 Frame 大小 F 和最大数据报长度：
//
//	FramePayloadSize = F - wire.FrameHeaderSize
//	FramesPerPacket  = floor((MaxDatagramSize - wire.PacketHeaderSize) / F)
//	PacketCapacity   = FramesPerPacket * FramePayloadSize
//
// 负载按 PacketCapacity 分块，每块再按 FramePayloadSize 切分为 Frame，
// 每个 Frame 记录其在流中的真实偏移。
//
// 流内标记：第一个包 FIRST_OF_STREAM_GROUP，最后一个包 LAST_OF_STREAM_GROUP，
// 其余 DATA；只有一个包的流标记为 LAST_OF_STREAM_GROUP。
// END_OF_SESSION_DATA 由多路复用器在所有流结束后发送，不在这里产生。
package packetizer

import (
	"fmt"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// Layout 由 Frame 大小和数据报上限推导出的切分参数
type Layout struct {
	FrameSize        int // 含头部的 Frame 大小
	FramePayloadSize int // 每个 Frame 的数据字节数
	FramesPerPacket  int // 每个包最多容纳的 Frame 数
	PacketCapacity   int // 每个包最多容纳的流数据字节数
	MaxDatagramSize  int
}

// NewLayout 计算切分参数
func NewLayout(frameSize, maxDatagramSize int) (Layout, error) {
	if frameSize <= wire.FrameHeaderSize {
		return Layout{}, fmt.Errorf("%w: %d <= frame header %d", ErrFrameSizeTooSmall, frameSize, wire.FrameHeaderSize)
	}

	framesPerPacket := (maxDatagramSize - wire.PacketHeaderSize) / frameSize
	if framesPerPacket < 1 {
		return Layout{}, fmt.Errorf("%w: frame %d, datagram %d", ErrFrameSizeTooLarge, frameSize, maxDatagramSize)
	}

	payloadSize := frameSize - wire.FrameHeaderSize
	return Layout{
		FrameSize:        frameSize,
		FramePayloadSize: payloadSize,
		FramesPerPacket:  framesPerPacket,
		PacketCapacity:   framesPerPacket * payloadSize,
		MaxDatagramSize:  maxDatagramSize,
	}, nil
}

// PacketCount 返回长度为 n 的负载需要的包数
func (l Layout) PacketCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + l.PacketCapacity - 1) / l.PacketCapacity
}

// maxPayload 单个包负载的上限
func (l Layout) maxPayload() int {
	return l.MaxDatagramSize - wire.PacketHeaderSize
}
