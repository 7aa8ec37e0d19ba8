package packetizer

import (
	"github.com/dep2p/go-mquic/internal/core/wire"
)

// Packetizer 按顺序产出一个流的全部数据包
//
// 不分配 packet_id，ID 在发送时由会话分配。
// 非并发安全，每个流一个实例。
type Packetizer struct {
	streamID uint32
	payload  []byte
	layout   Layout

	offset int // 下一个未打包字节的偏移
	index  int // 已产出的包数
	count  int // 总包数
}

// New 创建 Packetizer
func New(streamID uint32, payload []byte, layout Layout) *Packetizer {
	return &Packetizer{
		streamID: streamID,
		payload:  payload,
		layout:   layout,
		count:    layout.PacketCount(len(payload)),
	}
}

// StreamID 返回流 ID
func (p *Packetizer) StreamID() uint32 {
	return p.streamID
}

// Count 返回该流需要的总包数
func (p *Packetizer) Count() int {
	return p.count
}

// Remaining 返回尚未产出的包数
func (p *Packetizer) Remaining() int {
	return p.count - p.index
}

// Next 产出下一个数据包，全部产出后返回 nil
func (p *Packetizer) Next() *wire.Packet {
	if p.offset >= len(p.payload) {
		return nil
	}

	limit := p.layout.maxPayload()
	buf := make([]byte, 0, min(limit, p.layout.FramesPerPacket*p.layout.FrameSize))
	frames := 0

	for frames < p.layout.FramesPerPacket && p.offset < len(p.payload) {
		end := min(p.offset+p.layout.FramePayloadSize, len(p.payload))
		// 加入下一个 Frame 会超出数据报上限时先关闭当前包
		if frames > 0 && len(buf)+wire.FrameHeaderSize+(end-p.offset) > limit {
			break
		}
		buf = wire.AppendFrame(buf, wire.Frame{
			StreamID: p.streamID,
			Offset:   uint64(p.offset),
			Data:     p.payload[p.offset:end],
		})
		p.offset = end
		frames++
	}

	p.index++
	return &wire.Packet{Flag: p.flagFor(p.index), Payload: buf}
}

// flagFor 计算第 n 个包（从 1 开始）的流内标记
func (p *Packetizer) flagFor(n int) wire.Flag {
	switch {
	case p.offset >= len(p.payload):
		return wire.FlagLastOfStream
	case n == 1:
		return wire.FlagFirstOfStream
	default:
		return wire.FlagData
	}
}

// Packetize 一次性切分整个负载
func Packetize(streamID uint32, payload []byte, frameSize, maxDatagramSize int) ([]*wire.Packet, error) {
	layout, err := NewLayout(frameSize, maxDatagramSize)
	if err != nil {
		return nil, err
	}

	pk := New(streamID, payload, layout)
	packets := make([]*wire.Packet, 0, pk.Count())
	for pkt := pk.Next(); pkt != nil; pkt = pk.Next() {
		packets = append(packets, pkt)
	}
	return packets, nil
}
