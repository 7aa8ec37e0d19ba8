package wire

// Packet 线路上的一个数据报
//
// Payload 是零个或多个已序列化的 Frame 的拼接，
// 其长度即线路上的 payload_length 字段。
type Packet struct {
	Flag    Flag
	ID      uint32
	Payload []byte
}

// NewControl 创建不带负载的控制包
func NewControl(flag Flag) *Packet {
	return &Packet{Flag: flag}
}

// WireLen 返回编码后的字节数
func (p *Packet) WireLen() int {
	return PacketHeaderSize + len(p.Payload)
}

// Frame 一个流负载的连续片段
//
// Offset 是该片段在原始流负载中的字节偏移（不是包内偏移）。
type Frame struct {
	StreamID uint32
	Offset   uint64
	Data     []byte
}

// WireLen 返回编码后的字节数
func (f Frame) WireLen() int {
	return FrameHeaderSize + len(f.Data)
}

// End 返回该片段之后的流偏移
func (f Frame) End() uint64 {
	return f.Offset + uint64(len(f.Data))
}
