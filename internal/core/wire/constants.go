package wire

const (
	// PacketHeaderSize Packet 头部长度：flag(1) + packet_id(4) + payload_length(8)
	PacketHeaderSize = 1 + 4 + 8

	// FrameHeaderSize Frame 头部长度：stream_id(4) + offset(8) + data_length(8)
	FrameHeaderSize = 4 + 8 + 8

	// MaxUDPPayloadSize IPv4 下单个 UDP 数据报的最大负载
	MaxUDPPayloadSize = 65507

	// DefaultMaxDatagramSize 默认最大数据报长度
	DefaultMaxDatagramSize = MaxUDPPayloadSize

	// MinDatagramSize 能容纳一个非空 Frame 的最小数据报长度
	MinDatagramSize = PacketHeaderSize + FrameHeaderSize + 1

	// StreamIDOverall 保留给会话级汇总统计的流 ID
	StreamIDOverall uint32 = 0
)
